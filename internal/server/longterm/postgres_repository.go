package longterm

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListActiveOn(ctx context.Context, day time.Time) ([]*LongTermGuest, error) {
	query := `
		SELECT id, full_name, id_card_number, company, supplier_name,
		       license_plate, reason, estimated_at, start_date, end_date,
		       active, registered_by, created_at
		FROM long_term_guests
		WHERE active AND start_date <= $1 AND end_date >= $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []*LongTermGuest
	for rows.Next() {
		g := &LongTermGuest{}
		err := rows.Scan(
			&g.ID, &g.FullName, &g.IDCardNumber, &g.Company, &g.SupplierName,
			&g.LicensePlate, &g.Reason, &g.EstimatedAt, &g.StartDate, &g.EndDate,
			&g.Active, &g.RegisteredBy, &g.CreatedAt,
		)
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
