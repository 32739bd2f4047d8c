package guests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/common"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/logging"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/textnorm"
)

// Notifier delivers guest lifecycle notifications. Implementations are
// best-effort: delivery failures are logged, never returned, so the
// registration flow is not coupled to messaging availability.
type Notifier interface {
	// EmitArchiveEvent posts one event message to the archive channel.
	EmitArchiveEvent(ctx context.Context, g *Guest, event Event, actingUserID int64)

	// RefreshPendingList reposts the single pending-list message.
	RefreshPendingList(ctx context.Context)
}

// SheetRowDeleter removes a row from the registration form sheet.
type SheetRowDeleter interface {
	DeleteRow(ctx context.Context, spreadsheetID string, sheetGID int64, rowIndex int64) error
}

// FormSheetRef locates the form sheet for best-effort row cleanup on delete.
type FormSheetRef struct {
	SpreadsheetID string
	SheetGID      int64
}

type Service struct {
	repo     Repository
	notifier Notifier
	deleter  SheetRowDeleter
	sheet    FormSheetRef
	siteTZ   *time.Location
	log      logging.Logger
}

func NewService(repo Repository, notifier Notifier, deleter SheetRowDeleter, sheet FormSheetRef, siteTZ *time.Location, log logging.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		deleter:  deleter,
		sheet:    sheet,
		siteTZ:   siteTZ,
		log:      log,
	}
}

// Normalize canonicalizes the display fields of a record before persistence:
// title-cased full name and the standard license plate shape.
func Normalize(g *Guest) {
	g.FullName = textnorm.FormatFullName(g.FullName)
	g.LicensePlate = textnorm.FormatPlate(g.LicensePlate)
	g.IDCardNumber = strings.TrimSpace(g.IDCardNumber)
	g.Company = strings.TrimSpace(g.Company)
	g.SupplierName = strings.TrimSpace(g.SupplierName)
	g.Reason = strings.TrimSpace(g.Reason)
}

// Create registers a single guest as pending and dispatches notifications
// without blocking on them.
func (s *Service) Create(ctx context.Context, g *Guest, actingUserID int64) (*Guest, error) {
	if strings.TrimSpace(g.FullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", common.ErrValidation)
	}

	Normalize(g)
	g.Status = StatusPending
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	created, err := s.repo.Create(ctx, g)
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, func(ctx context.Context) {
		s.notifier.EmitArchiveEvent(ctx, created, EventNewRegistration, actingUserID)
		s.notifier.RefreshPendingList(ctx)
	})
	return created, nil
}

// CreateBulk registers a group of guests in one transaction. One archive
// event per guest is emitted, followed by a single pending-list refresh.
func (s *Service) CreateBulk(ctx context.Context, gs []*Guest, actingUserID int64) error {
	if len(gs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, g := range gs {
		if strings.TrimSpace(g.FullName) == "" {
			return fmt.Errorf("%w: full name is required", common.ErrValidation)
		}
		Normalize(g)
		g.Status = StatusPending
		if g.CreatedAt.IsZero() {
			g.CreatedAt = now
		}
	}

	if err := s.repo.CreateBatch(ctx, gs); err != nil {
		return err
	}

	s.dispatch(ctx, func(ctx context.Context) {
		for _, g := range gs {
			s.notifier.EmitArchiveEvent(ctx, g, EventGroupRegistration, actingUserID)
		}
		s.notifier.RefreshPendingList(ctx)
	})
	return nil
}

// ConfirmCheckIn marks a guest as arrived. Repeated calls are no-ops and
// emit no further notifications.
func (s *Service) ConfirmCheckIn(ctx context.Context, id int64, actingUserID int64) (*Guest, error) {
	return s.confirm(ctx, id, actingUserID, EventCheckIn, s.repo.MarkCheckedIn)
}

// ConfirmCheckOut marks a guest as departed. Idempotent like ConfirmCheckIn.
func (s *Service) ConfirmCheckOut(ctx context.Context, id int64, actingUserID int64) (*Guest, error) {
	return s.confirm(ctx, id, actingUserID, EventCheckOut, s.repo.MarkCheckedOut)
}

func (s *Service) confirm(ctx context.Context, id, actingUserID int64, event Event,
	mark func(ctx context.Context, id int64, at time.Time) (bool, error)) (*Guest, error) {

	changed, err := mark(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if changed {
		s.dispatch(ctx, func(ctx context.Context) {
			s.notifier.EmitArchiveEvent(ctx, g, event, actingUserID)
			s.notifier.RefreshPendingList(ctx)
		})
	}
	return g, nil
}

// Delete removes a record. When the record came from the form sheet its
// source row is deleted too, best effort: a sheet failure is logged and
// the database delete stands.
func (s *Service) Delete(ctx context.Context, id int64, sheetRowIndex int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if sheetRowIndex > 0 && s.deleter != nil && s.sheet.SpreadsheetID != "" {
		if err := s.deleter.DeleteRow(ctx, s.sheet.SpreadsheetID, s.sheet.SheetGID, sheetRowIndex-1); err != nil {
			s.log.Warn(ctx, "form sheet row delete failed", "guest_id", id, "row", sheetRowIndex, "error", err)
		}
	}

	s.dispatch(ctx, func(ctx context.Context) {
		s.notifier.RefreshPendingList(ctx)
	})
	return nil
}

// ProcessNoShows flags every pending guest expected before today (site
// time zone) as a no-show and notifies once per record.
func (s *Service) ProcessNoShows(ctx context.Context) (int, error) {
	now := time.Now().In(s.siteTZ)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.siteTZ)

	flagged, err := s.repo.MarkNoShows(ctx, startOfDay.UTC())
	if err != nil {
		return 0, err
	}
	if len(flagged) == 0 {
		return 0, nil
	}

	s.log.Info(ctx, "no-show sweep flagged guests", "count", len(flagged))
	s.dispatch(ctx, func(ctx context.Context) {
		for _, g := range flagged {
			s.notifier.EmitArchiveEvent(ctx, g, EventNoShow, 0)
		}
		s.notifier.RefreshPendingList(ctx)
	})
	return len(flagged), nil
}

// dispatch runs notification work on its own goroutine with a context that
// survives the caller's request. The registration flow never waits on it.
func (s *Service) dispatch(ctx context.Context, fn func(ctx context.Context)) {
	if s.notifier == nil {
		return
	}
	go fn(context.WithoutCancel(ctx))
}
