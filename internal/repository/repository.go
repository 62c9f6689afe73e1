package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of *pgxpool.Pool used by Repository; pgxmock implements it too.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	FetchPendingAddresses(ctx context.Context, limit, maxAttempts int) ([]models.PendingAddress, error)
	UpdateCoordinates(ctx context.Context, addressID int, coords models.Coordinates) error
	IncrementFailureCount(ctx context.Context, addressID int, errMsg string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
