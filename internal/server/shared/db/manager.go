package db

import (
	"context"
	"database/sql"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/guests"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/longterm"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Guests() guests.Repository
	LongTerm() longterm.Repository
}
