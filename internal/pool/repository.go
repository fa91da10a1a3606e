package pool

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/dailywod/internal/errors"
	"github.com/myrjola/dailywod/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.NewSentinel("not found")

// baseRepository carries the dependencies shared by all repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// repository aggregates the repositories the service needs.
type repository struct {
	movements *sqliteMovementRepository
	cadence   *sqliteCadenceRepository
	entries   *sqliteEntryRepository
}

// repositoryFactory wires repositories to a shared database handle.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		movements: newSQLiteMovementRepository(f.db, f.logger),
		cadence:   newSQLiteCadenceRepository(f.db, f.logger),
		entries:   newSQLiteEntryRepository(f.db, f.logger),
	}
}

// formatTimestamp formats a timestamp for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// parseTimestamp parses a timestamp from a nullable database string.
func parseTimestamp(timestampStr sql.NullString) (*time.Time, error) {
	if !timestampStr.Valid {
		return nil, nil //nolint:nilnil // nil time is expected when the column is NULL.
	}
	parsedTime, err := time.Parse(timestampFormat, timestampStr.String)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp format: %w", err)
	}
	return &parsedTime, nil
}
