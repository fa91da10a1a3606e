package pool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/dailywod/internal/sqlite"
)

// sqliteCadenceRepository stores per-entity cadence records.
type sqliteCadenceRepository struct {
	baseRepository
}

func newSQLiteCadenceRepository(db *sqlite.Database, logger *slog.Logger) *sqliteCadenceRepository {
	return &sqliteCadenceRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves the cadence record for an entity.
func (r *sqliteCadenceRepository) Get(ctx context.Context, entityID string) (CadenceRecord, error) {
	var (
		record          CadenceRecord
		lastPerformedAt sql.NullString
	)

	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT entity_id, min_interval_days, last_performed_at
		FROM cadence_records
		WHERE entity_id = ?`, entityID).Scan(
		&record.EntityID,
		&record.MinIntervalDays,
		&lastPerformedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return CadenceRecord{}, fmt.Errorf("cadence record %s: %w", entityID, ErrNotFound)
	}
	if err != nil {
		return CadenceRecord{}, fmt.Errorf("query cadence record: %w", err)
	}

	if record.LastPerformedAt, err = parseTimestamp(lastPerformedAt); err != nil {
		return CadenceRecord{}, fmt.Errorf("parse last_performed_at: %w", err)
	}

	return record, nil
}

// GetAll returns every cadence record keyed by entity ID.
func (r *sqliteCadenceRepository) GetAll(ctx context.Context) (_ map[string]CadenceRecord, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT entity_id, min_interval_days, last_performed_at
		FROM cadence_records`)
	if err != nil {
		return nil, fmt.Errorf("query cadence records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	records := make(map[string]CadenceRecord)
	for rows.Next() {
		var (
			record          CadenceRecord
			lastPerformedAt sql.NullString
		)
		if err = rows.Scan(&record.EntityID, &record.MinIntervalDays, &lastPerformedAt); err != nil {
			return nil, fmt.Errorf("scan cadence record: %w", err)
		}
		if record.LastPerformedAt, err = parseTimestamp(lastPerformedAt); err != nil {
			return nil, fmt.Errorf("parse last_performed_at: %w", err)
		}
		records[record.EntityID] = record
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cadence record rows: %w", err)
	}

	return records, nil
}

// Upsert creates or replaces the cadence record for an entity.
func (r *sqliteCadenceRepository) Upsert(ctx context.Context, record CadenceRecord) error {
	var lastPerformedAt any
	if record.LastPerformedAt != nil {
		lastPerformedAt = formatTimestamp(*record.LastPerformedAt)
	}

	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO cadence_records (entity_id, min_interval_days, last_performed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (entity_id) DO UPDATE SET
			min_interval_days = excluded.min_interval_days,
			last_performed_at = excluded.last_performed_at`,
		record.EntityID, record.MinIntervalDays, lastPerformedAt)
	if err != nil {
		return fmt.Errorf("upsert cadence record: %w", err)
	}
	return nil
}

// EnsureDefault creates a cadence record with the given interval unless one
// already exists. Existing records are left untouched.
func (r *sqliteCadenceRepository) EnsureDefault(ctx context.Context, entityID string, intervalDays int) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT OR IGNORE INTO cadence_records (entity_id, min_interval_days, last_performed_at)
		VALUES (?, ?, NULL)`,
		entityID, intervalDays)
	if err != nil {
		return fmt.Errorf("ensure cadence record: %w", err)
	}
	return nil
}

// MarkPerformed upserts the last-performed timestamp for an entity, keeping
// an existing minimum interval intact.
func (r *sqliteCadenceRepository) MarkPerformed(ctx context.Context, entityID string, asOf time.Time) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO cadence_records (entity_id, min_interval_days, last_performed_at)
		VALUES (?, 0, ?)
		ON CONFLICT (entity_id) DO UPDATE SET
			last_performed_at = excluded.last_performed_at`,
		entityID, formatTimestamp(asOf))
	if err != nil {
		return fmt.Errorf("mark cadence record performed: %w", err)
	}
	return nil
}
