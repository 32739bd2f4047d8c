package guests

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, g *Guest) (*Guest, error)

	// CreateBatch persists all guests in a single transaction. Either every
	// record is committed or none is; the form sync job relies on this to
	// keep its write-back-confirms contract.
	CreateBatch(ctx context.Context, gs []*Guest) error

	GetByID(ctx context.Context, id int64) (*Guest, error)

	// ExistsWithDocumentBetween reports whether any guest with the given
	// non-empty id document was created in [from, to).
	ExistsWithDocumentBetween(ctx context.Context, doc string, from, to time.Time) (bool, error)

	// DocumentsCreatedBetween returns the distinct non-empty id documents of
	// guests created in [from, to).
	DocumentsCreatedBetween(ctx context.Context, from, to time.Time) ([]string, error)

	// ListPending returns pending guests ordered by creation time ascending,
	// with the registering user's name joined in.
	ListPending(ctx context.Context) ([]*Guest, error)

	// MarkCheckedIn transitions a guest to checked_in. Returns false when the
	// guest was already checked in (no state change).
	MarkCheckedIn(ctx context.Context, id int64, at time.Time) (bool, error)

	// MarkCheckedOut transitions a guest to checked_out. Returns false when
	// the guest was already checked out.
	MarkCheckedOut(ctx context.Context, id int64, at time.Time) (bool, error)

	// MarkNoShows flags every pending guest whose estimated arrival is
	// before cutoff and returns the affected records.
	MarkNoShows(ctx context.Context, cutoff time.Time) ([]*Guest, error)

	Delete(ctx context.Context, id int64) error
}
