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

// sqliteEntryRepository stores workout pool entries and their prescriptions.
type sqliteEntryRepository struct {
	baseRepository
}

func newSQLiteEntryRepository(db *sqlite.Database, logger *slog.Logger) *sqliteEntryRepository {
	return &sqliteEntryRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Count returns the number of entries in the pool.
func (r *sqliteEntryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT COUNT(*) FROM pool_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pool entries: %w", err)
	}
	return count, nil
}

// Get retrieves a single entry with its prescriptions.
func (r *sqliteEntryRepository) Get(ctx context.Context, id string) (Entry, error) {
	var (
		entry         Entry
		lastPerformed sql.NullString
		rounds        sql.NullInt64
		createdAtStr  string
		updatedAtStr  string
	)

	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, description, format, intensity, duration_minutes,
		       rounds, cadence_days, enabled, last_performed, created_at, updated_at
		FROM pool_entries
		WHERE id = ?`, id).Scan(
		&entry.ID,
		&entry.Name,
		&entry.Description,
		&entry.Format,
		&entry.Intensity,
		&entry.DurationMinutes,
		&rounds,
		&entry.CadenceDays,
		&entry.Enabled,
		&lastPerformed,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("pool entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query pool entry: %w", err)
	}

	if err = r.hydrateEntry(&entry, rounds, lastPerformed, createdAtStr, updatedAtStr); err != nil {
		return Entry{}, err
	}
	if entry.Movements, err = r.fetchPrescriptions(ctx, entry.ID); err != nil {
		return Entry{}, fmt.Errorf("fetch prescriptions for entry %s: %w", entry.ID, err)
	}

	return entry, nil
}

// List returns all pool entries, optionally restricted to enabled ones.
func (r *sqliteEntryRepository) List(ctx context.Context, enabledOnly bool) (_ []Entry, err error) {
	query := `
		SELECT id, name, description, format, intensity, duration_minutes,
		       rounds, cadence_days, enabled, last_performed, created_at, updated_at
		FROM pool_entries`
	if enabledOnly {
		query += `
		WHERE enabled = 1`
	}
	query += `
		ORDER BY name`

	rows, err := r.db.ReadOnly.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pool entries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var entries []Entry
	for rows.Next() {
		var (
			entry         Entry
			lastPerformed sql.NullString
			rounds        sql.NullInt64
			createdAtStr  string
			updatedAtStr  string
		)
		if err = rows.Scan(
			&entry.ID,
			&entry.Name,
			&entry.Description,
			&entry.Format,
			&entry.Intensity,
			&entry.DurationMinutes,
			&rounds,
			&entry.CadenceDays,
			&entry.Enabled,
			&lastPerformed,
			&createdAtStr,
			&updatedAtStr,
		); err != nil {
			return nil, fmt.Errorf("scan pool entry: %w", err)
		}
		if err = r.hydrateEntry(&entry, rounds, lastPerformed, createdAtStr, updatedAtStr); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range entries {
		if entries[i].Movements, err = r.fetchPrescriptions(ctx, entries[i].ID); err != nil {
			return nil, fmt.Errorf("fetch prescriptions for entry %s: %w", entries[i].ID, err)
		}
	}

	return entries, nil
}

// hydrateEntry converts nullable columns into the entry's optional fields.
func (r *sqliteEntryRepository) hydrateEntry(
	entry *Entry,
	rounds sql.NullInt64,
	lastPerformed sql.NullString,
	createdAtStr, updatedAtStr string,
) error {
	var err error
	if rounds.Valid {
		roundsValue := int(rounds.Int64)
		entry.Rounds = &roundsValue
	}
	if entry.LastPerformed, err = parseTimestamp(lastPerformed); err != nil {
		return fmt.Errorf("parse last_performed: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(timestampFormat, createdAtStr); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if entry.UpdatedAt, err = time.Parse(timestampFormat, updatedAtStr); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}

// fetchPrescriptions loads the ordered movement prescriptions of an entry.
func (r *sqliteEntryRepository) fetchPrescriptions(ctx context.Context, entryID string) (_ []Prescription, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT movement_id, reps, time_seconds, weight_kg
		FROM pool_entry_movements
		WHERE entry_id = ?
		ORDER BY position`, entryID)
	if err != nil {
		return nil, fmt.Errorf("query prescriptions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var prescriptions []Prescription
	for rows.Next() {
		var (
			rx          Prescription
			timeSeconds sql.NullInt64
			weightKg    sql.NullFloat64
		)
		if err = rows.Scan(&rx.MovementID, &rx.Reps, &timeSeconds, &weightKg); err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		if timeSeconds.Valid {
			seconds := int(timeSeconds.Int64)
			rx.TimeSeconds = &seconds
		}
		if weightKg.Valid {
			weight := weightKg.Float64
			rx.WeightKg = &weight
		}
		prescriptions = append(prescriptions, rx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prescription rows: %w", err)
	}

	return prescriptions, nil
}

// Create inserts an entry and its prescriptions in one transaction.
func (r *sqliteEntryRepository) Create(ctx context.Context, entry Entry) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	var rounds any
	if entry.Rounds != nil {
		rounds = *entry.Rounds
	}
	var lastPerformed any
	if entry.LastPerformed != nil {
		lastPerformed = formatTimestamp(*entry.LastPerformed)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pool_entries (
			id, name, description, format, intensity, duration_minutes,
			rounds, cadence_days, enabled, last_performed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.Description, string(entry.Format), string(entry.Intensity),
		entry.DurationMinutes, rounds, entry.CadenceDays, entry.Enabled, lastPerformed,
		formatTimestamp(entry.CreatedAt), formatTimestamp(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert pool entry: %w", err)
	}

	for position, rx := range entry.Movements {
		var timeSeconds any
		if rx.TimeSeconds != nil {
			timeSeconds = *rx.TimeSeconds
		}
		var weightKg any
		if rx.WeightKg != nil {
			weightKg = *rx.WeightKg
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pool_entry_movements (entry_id, position, movement_id, reps, time_seconds, weight_kg)
			VALUES (?, ?, ?, ?, ?, ?)`,
			entry.ID, position+1, rx.MovementID, rx.Reps, timeSeconds, weightKg)
		if err != nil {
			return fmt.Errorf("insert prescription %d: %w", position+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// SetEnabled toggles the soft-delete flag of an entry.
func (r *sqliteEntryRepository) SetEnabled(ctx context.Context, id string, enabled bool, now time.Time) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE pool_entries
		SET enabled = ?, updated_at = ?
		WHERE id = ?`,
		enabled, formatTimestamp(now), id)
	if err != nil {
		return fmt.Errorf("update pool entry enabled: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pool entry %s: %w", id, ErrNotFound)
	}

	return nil
}

// MarkPerformed records the entry and every one of its movements as performed
// at asOf inside one transaction, so a failure leaves no partial state.
func (r *sqliteEntryRepository) MarkPerformed(
	ctx context.Context,
	entryID string,
	movementIDs []int,
	asOf time.Time,
) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	performedAt := formatTimestamp(asOf)

	result, err := tx.ExecContext(ctx, `
		UPDATE pool_entries
		SET last_performed = ?, updated_at = ?
		WHERE id = ?`,
		performedAt, performedAt, entryID)
	if err != nil {
		return fmt.Errorf("update pool entry last performed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pool entry %s: %w", entryID, ErrNotFound)
	}

	for _, movementID := range movementIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cadence_records (entity_id, min_interval_days, last_performed_at)
			VALUES (?, 0, ?)
			ON CONFLICT (entity_id) DO UPDATE SET
				last_performed_at = excluded.last_performed_at`,
			movementEntityID(movementID), performedAt)
		if err != nil {
			return fmt.Errorf("mark movement %d performed: %w", movementID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
