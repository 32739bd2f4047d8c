package longterm

import (
	"context"
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/logging"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/guests"
)

type Service struct {
	repo   Repository
	guests guests.Repository
	siteTZ *time.Location
	log    logging.Logger
}

func NewService(repo Repository, guestRepo guests.Repository, siteTZ *time.Location, log logging.Logger) *Service {
	return &Service{repo: repo, guests: guestRepo, siteTZ: siteTZ, log: log}
}

// Materialize creates today's pending guest record for every long-term
// registration active today. A registration is skipped when any guest
// with the same id document was already created today, so reruns within
// a day (and overlap with form submissions) stay duplicate-free.
func (s *Service) Materialize(ctx context.Context) (int, error) {
	now := time.Now().In(s.siteTZ)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.siteTZ)
	dayEnd := dayStart.Add(24 * time.Hour)

	active, err := s.repo.ListActiveOn(ctx, dayStart)
	if err != nil {
		return 0, err
	}
	if len(active) == 0 {
		return 0, nil
	}

	existing, err := s.guests.DocumentsCreatedBetween(ctx, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, doc := range existing {
		seen[doc] = struct{}{}
	}

	var batch []*guests.Guest
	for _, lt := range active {
		if lt.IDCardNumber != "" {
			if _, dup := seen[lt.IDCardNumber]; dup {
				continue
			}
			seen[lt.IDCardNumber] = struct{}{}
		}

		est := lt.EstimatedAt.In(s.siteTZ)
		estimatedAt := time.Date(now.Year(), now.Month(), now.Day(),
			est.Hour(), est.Minute(), 0, 0, s.siteTZ)

		g := &guests.Guest{
			FullName:     lt.FullName,
			IDCardNumber: lt.IDCardNumber,
			Company:      lt.Company,
			SupplierName: lt.SupplierName,
			LicensePlate: lt.LicensePlate,
			Reason:       lt.Reason,
			Status:       guests.StatusPending,
			EstimatedAt:  estimatedAt.UTC(),
			RegisteredBy: lt.RegisteredBy,
			CreatedAt:    time.Now().UTC(),
		}
		guests.Normalize(g)
		batch = append(batch, g)
	}

	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.guests.CreateBatch(ctx, batch); err != nil {
		return 0, err
	}

	s.log.Info(ctx, "long-term registrations materialized", "count", len(batch))
	return len(batch), nil
}
