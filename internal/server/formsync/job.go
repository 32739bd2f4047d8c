package formsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/common"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/logging"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/guests"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/users"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/sheets"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/textnorm"
)

// Form response layout, 0-indexed. Column 7 (email) and 9 are unused.
const (
	colTimestamp = iota
	colSubmitter
	colGuestName
	colIDDocument
	colVendor
	colPlate
	colJobDetail
	_ // email
	colEstimatedTime
	_
	colSyncStatus
)

// firstDataRow is the spreadsheet row number of the first response;
// row 1 is the header.
const firstDataRow = 2

// SheetClient is the slice of the spreadsheet client the job needs.
type SheetClient interface {
	ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
	BatchUpdateValues(ctx context.Context, spreadsheetID string, updates []sheets.ValueUpdate) error
}

// Config locates the form-response sheet and the status column.
type Config struct {
	SpreadsheetID string
	SheetName     string
	StatusColumn  string
}

type Job struct {
	sheet    SheetClient
	cfg      Config
	users    users.Repository
	guests   guests.Repository
	notifier guests.Notifier
	siteTZ   *time.Location
	log      logging.Logger
}

func NewJob(sheet SheetClient, cfg Config, userRepo users.Repository, guestRepo guests.Repository,
	notifier guests.Notifier, siteTZ *time.Location, log logging.Logger) *Job {
	return &Job{
		sheet:    sheet,
		cfg:      cfg,
		users:    userRepo,
		guests:   guestRepo,
		notifier: notifier,
		siteTZ:   siteTZ,
		log:      log,
	}
}

type rowDecision struct {
	rowIndex int
	status   Status
	guest    *guests.Guest
}

// Run processes every undecided form row once: validate, stage, commit
// all accepted rows in one transaction, then write the per-row statuses
// back to the sheet. The sheet status is the idempotency marker, so a
// commit that fails leaves nothing written back and the next tick
// retries; a write-back that fails after commit resolves itself next
// tick when the same-day duplicate check settles the rows as DUPLICATED.
func (j *Job) Run(ctx context.Context) error {
	if j.cfg.SpreadsheetID == "" {
		j.log.Warn(ctx, "form sheet not configured, skipping sync")
		return nil
	}

	readRange := fmt.Sprintf("'%s'!A%d:%s", j.cfg.SheetName, firstDataRow, j.cfg.StatusColumn)
	rows, err := j.sheet.ReadRange(ctx, j.cfg.SpreadsheetID, readRange)
	if err != nil {
		return fmt.Errorf("form responses read: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	decisions := j.decide(ctx, rows)
	if len(decisions) == 0 {
		return nil
	}

	var staged []*guests.Guest
	for _, d := range decisions {
		if d.guest != nil {
			staged = append(staged, d.guest)
		}
	}
	if err := j.guests.CreateBatch(ctx, staged); err != nil {
		return fmt.Errorf("commit staged registrations: %w", err)
	}

	updates := make([]sheets.ValueUpdate, len(decisions))
	for i, d := range decisions {
		updates[i] = sheets.ValueUpdate{
			Range: fmt.Sprintf("'%s'!%s%d", j.cfg.SheetName, j.cfg.StatusColumn, d.rowIndex),
			Value: d.status.String(),
		}
	}
	if err := j.sheet.BatchUpdateValues(ctx, j.cfg.SpreadsheetID, updates); err != nil {
		return fmt.Errorf("status write-back: %w", err)
	}

	if len(staged) > 0 {
		j.log.Info(ctx, "form sync committed registrations",
			"created", len(staged), "decided", len(decisions))
		for _, g := range staged {
			j.notifier.EmitArchiveEvent(ctx, g, guests.EventFormRegistration, g.RegisteredBy)
		}
		j.notifier.RefreshPendingList(ctx)
	}
	return nil
}

// decide walks the rows in sheet order and produces one status per
// undecided row. Accepted rows carry the staged guest record.
func (j *Job) decide(ctx context.Context, rows [][]string) []rowDecision {
	now := time.Now().In(j.siteTZ)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.siteTZ)
	dayEnd := dayStart.Add(24 * time.Hour)

	var decisions []rowDecision
	seenDocs := map[string]struct{}{}

	for i, row := range rows {
		rowIndex := i + firstDataRow

		if strings.TrimSpace(cell(row, colSyncStatus)) != "" {
			continue
		}

		submitter := strings.TrimSpace(cell(row, colSubmitter))
		if submitter == "" {
			decisions = append(decisions, rowDecision{rowIndex: rowIndex, status: StatusMissingUser})
			continue
		}

		user, err := j.users.GetByUsername(ctx, submitter)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				decisions = append(decisions, rowDecision{rowIndex: rowIndex, status: StatusInvalidUser})
			} else {
				j.log.Error(ctx, "submitter lookup failed", "row", rowIndex, "error", err)
				decisions = append(decisions, rowDecision{rowIndex: rowIndex, status: PersistenceError(err.Error())})
			}
			continue
		}

		doc := strings.TrimSpace(cell(row, colIDDocument))
		if doc != "" {
			if _, dup := seenDocs[doc]; dup {
				decisions = append(decisions, rowDecision{rowIndex: rowIndex, status: StatusDuplicated})
				continue
			}
			exists, err := j.guests.ExistsWithDocumentBetween(ctx, doc, dayStart.UTC(), dayEnd.UTC())
			if err != nil {
				j.log.Error(ctx, "duplicate check failed", "row", rowIndex, "error", err)
				decisions = append(decisions, rowDecision{rowIndex: rowIndex, status: PersistenceError(err.Error())})
				continue
			}
			if exists {
				decisions = append(decisions, rowDecision{rowIndex: rowIndex, status: StatusDuplicated})
				continue
			}
			seenDocs[doc] = struct{}{}
		}

		vendor := strings.TrimSpace(cell(row, colVendor))
		g := &guests.Guest{
			FullName:     textnorm.FormatFullName(cell(row, colGuestName)),
			IDCardNumber: doc,
			Company:      vendor,
			SupplierName: vendor,
			LicensePlate: textnorm.FormatPlate(cell(row, colPlate)),
			Reason:       strings.TrimSpace(cell(row, colJobDetail)),
			Status:       guests.StatusPending,
			EstimatedAt:  j.resolveEstimatedAt(cell(row, colEstimatedTime), cell(row, colTimestamp)),
			RegisteredBy: user.ID,
			CreatedAt:    time.Now().UTC(),
		}
		decisions = append(decisions, rowDecision{rowIndex: rowIndex, status: StatusOK, guest: g})
	}
	return decisions
}

// resolveEstimatedAt picks the expected arrival instant. A declared
// estimated time wins; only when that field is blank does the
// submission timestamp apply, shifted by +1h-7h (the form scripting
// emits GMT+7 wall clock an hour behind the declared arrival). A
// non-blank estimated value that fails to parse means the submitter
// wrote free text there, not that the timestamp is a better guess, so
// it resolves to now.
func (j *Job) resolveEstimatedAt(estimatedRaw, timestampRaw string) time.Time {
	if estimated := strings.TrimSpace(estimatedRaw); estimated != "" {
		if t, ok := textnorm.ParseDateTimeIn(estimated, j.siteTZ); ok {
			return t.UTC()
		}
		return time.Now().UTC()
	}
	if t, ok := textnorm.ParseTimestampIn(strings.TrimSpace(timestampRaw), j.siteTZ); ok {
		return t.Add(time.Hour - 7*time.Hour).UTC()
	}
	return time.Now().UTC()
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
