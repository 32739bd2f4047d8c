package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/guests"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/longterm"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/migrations"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/users"
)

type PostgresRepositoryManager struct {
	db       *sql.DB
	users    users.Repository
	guests   guests.Repository
	longTerm longterm.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Guests() guests.Repository {
	return m.guests
}

func (m *PostgresRepositoryManager) LongTerm() longterm.Repository {
	return m.longTerm
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:       db,
		users:    users.NewPostgresRepository(db),
		guests:   guests.NewPostgresRepository(db),
		longTerm: longterm.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
