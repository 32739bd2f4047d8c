package guests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/common"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/dbx"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const insertGuestQuery = `
	INSERT INTO guests (full_name, id_card_number, company, supplier_name,
	                    license_plate, reason, status, estimated_at,
	                    registered_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id
`

func insertGuest(ctx context.Context, db dbx.DBTX, g *Guest) error {
	return db.QueryRowContext(ctx, insertGuestQuery,
		g.FullName, g.IDCardNumber, g.Company, g.SupplierName,
		g.LicensePlate, g.Reason, g.Status, g.EstimatedAt.UTC(),
		g.RegisteredBy, g.CreatedAt.UTC(),
	).Scan(&g.ID)
}

func (r *PostgresRepository) Create(ctx context.Context, g *Guest) (*Guest, error) {
	if err := insertGuest(ctx, r.db, g); err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) CreateBatch(ctx context.Context, gs []*Guest) error {
	if len(gs) == 0 {
		return nil
	}
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, g := range gs {
			if err := insertGuest(ctx, tx, g); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("batch insert: %w", err)
	}
	return nil
}

const selectGuestColumns = `
	SELECT g.id, g.full_name, g.id_card_number, g.company, g.supplier_name,
	       g.license_plate, g.reason, g.status, g.estimated_at,
	       g.check_in_at, g.check_out_at, g.registered_by, g.created_at,
	       COALESCE(u.full_name, '')
	FROM guests g
	LEFT JOIN users u ON u.id = g.registered_by
`

func scanGuest(scan func(dest ...any) error) (*Guest, error) {
	g := &Guest{}
	err := scan(
		&g.ID, &g.FullName, &g.IDCardNumber, &g.Company, &g.SupplierName,
		&g.LicensePlate, &g.Reason, &g.Status, &g.EstimatedAt,
		&g.CheckInAt, &g.CheckOutAt, &g.RegisteredBy, &g.CreatedAt,
		&g.RegisteredByName,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Guest, error) {
	query := selectGuestColumns + ` WHERE g.id = $1`

	g, err := scanGuest(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) ExistsWithDocumentBetween(ctx context.Context, doc string, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM guests
			WHERE id_card_number = $1 AND created_at >= $2 AND created_at < $3
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, doc, from.UTC(), to.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) DocumentsCreatedBetween(ctx context.Context, from, to time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT id_card_number FROM guests
		WHERE id_card_number <> '' AND created_at >= $1 AND created_at < $2
	`
	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]*Guest, error) {
	query := selectGuestColumns + `
		WHERE g.status = $1
		ORDER BY g.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []*Guest
	for rows.Next() {
		g, err := scanGuest(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) MarkCheckedIn(ctx context.Context, id int64, at time.Time) (bool, error) {
	return r.transition(ctx, id, StatusCheckedIn, "check_in_at", at)
}

func (r *PostgresRepository) MarkCheckedOut(ctx context.Context, id int64, at time.Time) (bool, error) {
	return r.transition(ctx, id, StatusCheckedOut, "check_out_at", at)
}

func (r *PostgresRepository) transition(ctx context.Context, id int64, status, timeColumn string, at time.Time) (bool, error) {
	// timeColumn is one of two fixed identifiers, never caller input.
	query := fmt.Sprintf(`
		UPDATE guests SET status = $1, %s = $2
		WHERE id = $3 AND status <> $1
	`, timeColumn)

	res, err := r.db.ExecContext(ctx, query, status, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) MarkNoShows(ctx context.Context, cutoff time.Time) ([]*Guest, error) {
	query := `
		UPDATE guests SET status = $1
		WHERE status = $2 AND estimated_at < $3
		RETURNING id, full_name, id_card_number, company, supplier_name,
		          license_plate, reason, status, estimated_at,
		          check_in_at, check_out_at, registered_by, created_at, ''::text
	`
	rows, err := r.db.QueryContext(ctx, query, StatusNoShow, StatusPending, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []*Guest
	for rows.Next() {
		g, err := scanGuest(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
