package pool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/dailywod/internal/sqlite"
)

// sqliteMovementRepository reads the movement catalog. The catalog is seeded
// fixture data and immutable from the engine's point of view.
type sqliteMovementRepository struct {
	baseRepository
}

func newSQLiteMovementRepository(db *sqlite.Database, logger *slog.Logger) *sqliteMovementRepository {
	return &sqliteMovementRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves a single movement by ID.
func (r *sqliteMovementRepository) Get(ctx context.Context, id int) (Movement, error) {
	var movement Movement

	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, difficulty, is_main_movement, description_markdown
		FROM movements
		WHERE id = ?`, id).Scan(
		&movement.ID,
		&movement.Name,
		&movement.Difficulty,
		&movement.IsMainMovement,
		&movement.DescriptionMarkdown,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Movement{}, fmt.Errorf("movement %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Movement{}, fmt.Errorf("query movement: %w", err)
	}

	if movement.Groups, err = r.fetchGroups(ctx, movement.ID); err != nil {
		return Movement{}, fmt.Errorf("fetch groups for movement %d: %w", movement.ID, err)
	}
	if movement.RequiredEquipment, err = r.fetchEquipment(ctx, movement.ID); err != nil {
		return Movement{}, fmt.Errorf("fetch equipment for movement %d: %w", movement.ID, err)
	}

	return movement, nil
}

// List returns the full movement catalog with groups and equipment attached.
func (r *sqliteMovementRepository) List(ctx context.Context) (_ []Movement, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, difficulty, is_main_movement, description_markdown
		FROM movements
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var movements []Movement
	for rows.Next() {
		var movement Movement
		if err = rows.Scan(
			&movement.ID,
			&movement.Name,
			&movement.Difficulty,
			&movement.IsMainMovement,
			&movement.DescriptionMarkdown,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, movement)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i, movement := range movements {
		if movements[i].Groups, err = r.fetchGroups(ctx, movement.ID); err != nil {
			return nil, fmt.Errorf("fetch groups for movement %d: %w", movement.ID, err)
		}
		if movements[i].RequiredEquipment, err = r.fetchEquipment(ctx, movement.ID); err != nil {
			return nil, fmt.Errorf("fetch equipment for movement %d: %w", movement.ID, err)
		}
	}

	return movements, nil
}

// fetchGroups retrieves the declared functional groups of a movement.
func (r *sqliteMovementRepository) fetchGroups(ctx context.Context, movementID int) (_ []Group, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT group_name
		FROM movement_groups
		WHERE movement_id = ?
		ORDER BY group_name`, movementID)
	if err != nil {
		return nil, fmt.Errorf("query movement groups: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var groups []Group
	for rows.Next() {
		var group Group
		if err = rows.Scan(&group); err != nil {
			return nil, fmt.Errorf("scan movement group: %w", err)
		}
		groups = append(groups, group)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movement group rows: %w", err)
	}

	return groups, nil
}

// fetchEquipment retrieves the equipment a movement requires.
func (r *sqliteMovementRepository) fetchEquipment(ctx context.Context, movementID int) (_ []string, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT equipment
		FROM movement_equipment
		WHERE movement_id = ?
		ORDER BY equipment`, movementID)
	if err != nil {
		return nil, fmt.Errorf("query movement equipment: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var equipment []string
	for rows.Next() {
		var eq string
		if err = rows.Scan(&eq); err != nil {
			return nil, fmt.Errorf("scan movement equipment: %w", err)
		}
		equipment = append(equipment, eq)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movement equipment rows: %w", err)
	}

	return equipment, nil
}

// ListEquipment returns every distinct equipment identifier in the catalog.
func (r *sqliteMovementRepository) ListEquipment(ctx context.Context) (_ []string, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT DISTINCT equipment
		FROM movement_equipment
		ORDER BY equipment`)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var equipment []string
	for rows.Next() {
		var eq string
		if err = rows.Scan(&eq); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		equipment = append(equipment, eq)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment rows: %w", err)
	}

	return equipment, nil
}
