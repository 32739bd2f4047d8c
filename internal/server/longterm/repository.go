package longterm

import (
	"context"
	"time"
)

type Repository interface {
	// ListActiveOn returns active long-term registrations whose
	// [start_date, end_date] window contains the given day.
	ListActiveOn(ctx context.Context, day time.Time) ([]*LongTermGuest, error)
}
