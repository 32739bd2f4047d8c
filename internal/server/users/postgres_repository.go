package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query :=
		`SELECT id, username, full_name, role, telegram_id, active, created_at FROM users
		 WHERE username = $1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.FullName, &user.Role, &user.TelegramID, &user.Active, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query :=
		`SELECT id, username, full_name, role, telegram_id, active, created_at FROM users
		 WHERE id = $1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.FullName, &user.Role, &user.TelegramID, &user.Active, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}
