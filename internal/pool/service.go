package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/myrjola/dailywod/internal/sqlite"
)

// Service handles the business logic for the workout pool: generation,
// selection, and cadence bookkeeping. It holds no in-memory state between
// calls; everything lives in the database.
type Service struct {
	repo     *repository
	logger   *slog.Logger
	selector *selector
}

// NewService creates a new pool service. The random source drives selection
// jitter and the top-bracket pick; passing nil makes selection deterministic,
// always returning the highest-scoring candidate.
func NewService(db *sqlite.Database, logger *slog.Logger, rng *rand.Rand) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:     factory.newRepository(),
		logger:   logger,
		selector: newSelector(rng),
	}
}

// SelectionOptions narrows which entry SelectWorkout may return. Equipment is
// a hard constraint; intensity and format are soft preferences that fall back
// to the full eligible set when nothing matches.
type SelectionOptions struct {
	// AvailableEquipment lists the equipment on hand. Nil means no equipment
	// constraint; an empty slice means bodyweight only.
	AvailableEquipment []string
	PreferredIntensity *Intensity
	PreferredFormat    *Format
}

// EnsurePool populates the workout pool from the movement catalog. It is
// idempotent at the pool level: when the pool already has entries, no new
// ones are generated. Cadence defaults run on every call so movements added
// to the catalog after the pool was generated still receive theirs. Entries
// referencing movements missing from the catalog are skipped with a warning
// instead of failing generation.
func (s *Service) EnsurePool(ctx context.Context, now time.Time) error {
	catalog, err := s.repo.movements.List(ctx)
	if err != nil {
		return fmt.Errorf("list movements: %w", err)
	}

	if err = s.initializeCadenceDefaults(ctx, catalog); err != nil {
		return fmt.Errorf("initialize cadence defaults: %w", err)
	}

	count, err := s.repo.entries.Count(ctx)
	if err != nil {
		return fmt.Errorf("count pool entries: %w", err)
	}
	if count > 0 {
		return nil
	}

	known := make(map[int]bool, len(catalog))
	for _, movement := range catalog {
		known[movement.ID] = true
	}

	gen := newGenerator(catalog, s.logger)
	for _, entry := range gen.Generate(ctx, now) {
		if missing := missingMovement(entry, known); missing != 0 {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping pool entry with unknown movement",
				slog.String("entry", entry.Name),
				slog.Int("movement_id", missing))
			continue
		}
		if err = s.repo.entries.Create(ctx, entry); err != nil {
			return fmt.Errorf("create pool entry %s: %w", entry.Name, err)
		}
	}

	return nil
}

// missingMovement returns the first movement ID an entry references that is
// absent from the catalog, or zero when all references resolve.
func missingMovement(entry Entry, known map[int]bool) int {
	for _, rx := range entry.Movements {
		if !known[rx.MovementID] {
			return rx.MovementID
		}
	}
	return 0
}

// initializeCadenceDefaults lazily creates cadence records for movements that
// have none, using group-derived default intervals. Existing records are
// untouched.
func (s *Service) initializeCadenceDefaults(ctx context.Context, catalog []Movement) error {
	for _, movement := range catalog {
		interval := defaultIntervalDays(movement)
		if err := s.repo.cadence.EnsureDefault(ctx, movementEntityID(movement.ID), interval); err != nil {
			return fmt.Errorf("ensure cadence default for movement %d: %w", movement.ID, err)
		}
	}
	return nil
}

// SelectWorkout picks today's workout from the pool, or returns nil when no
// entry is eligible. A nil result is the "no workout available" condition,
// not an error.
func (s *Service) SelectWorkout(ctx context.Context, asOf time.Time, opts SelectionOptions) (*Entry, error) {
	entries, err := s.repo.entries.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list enabled pool entries: %w", err)
	}

	catalog, err := s.repo.movements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	movements := make(map[int]Movement, len(catalog))
	for _, movement := range catalog {
		movements[movement.ID] = movement
	}

	records, err := s.repo.cadence.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cadence records: %w", err)
	}

	eligible := filterEligible(entries, movements, records, opts.AvailableEquipment, asOf)
	if len(eligible) == 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "no eligible pool entries",
			slog.Time("as_of", asOf),
			slog.Int("pool_size", len(entries)))
		return nil, nil //nolint:nilnil // nil entry signals "no workout available today".
	}

	candidates := applyPreferences(eligible, opts.PreferredIntensity, opts.PreferredFormat)

	chosen, ok := s.selector.pick(candidates, records, asOf)
	if !ok {
		return nil, nil //nolint:nilnil // nil entry signals "no workout available today".
	}

	return &chosen, nil
}

// MarkPerformed records that an entry was performed on asOf. The entry's
// last-performed timestamp and every referenced movement's cadence record are
// updated atomically.
func (s *Service) MarkPerformed(ctx context.Context, entryID string, asOf time.Time) error {
	entry, err := s.repo.entries.Get(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get pool entry: %w", err)
	}

	movementIDs := make([]int, 0, len(entry.Movements))
	for _, rx := range entry.Movements {
		movementIDs = append(movementIDs, rx.MovementID)
	}

	if err = s.repo.entries.MarkPerformed(ctx, entryID, movementIDs, asOf); err != nil {
		return fmt.Errorf("mark entry performed: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "marked workout performed",
		slog.String("entry_id", entryID),
		slog.String("entry", entry.Name),
		slog.Time("as_of", asOf))

	return nil
}

// GetEntry retrieves a single pool entry.
func (s *Service) GetEntry(ctx context.Context, id string) (Entry, error) {
	entry, err := s.repo.entries.Get(ctx, id)
	if err != nil {
		return Entry{}, fmt.Errorf("get pool entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns the whole pool, disabled entries included.
func (s *Service) ListEntries(ctx context.Context) ([]Entry, error) {
	entries, err := s.repo.entries.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list pool entries: %w", err)
	}
	return entries, nil
}

// SetEntryEnabled toggles an entry in or out of selection. Disabling is the
// soft-delete mechanism; entries are never removed from the pool.
func (s *Service) SetEntryEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.repo.entries.SetEnabled(ctx, id, enabled, time.Now()); err != nil {
		return fmt.Errorf("set pool entry enabled: %w", err)
	}
	return nil
}

// ListMovements returns the full movement catalog.
func (s *Service) ListMovements(ctx context.Context) ([]Movement, error) {
	movements, err := s.repo.movements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// GetMovement retrieves a single movement by ID.
func (s *Service) GetMovement(ctx context.Context, id int) (Movement, error) {
	movement, err := s.repo.movements.Get(ctx, id)
	if err != nil {
		return Movement{}, fmt.Errorf("get movement: %w", err)
	}
	return movement, nil
}

// ListEquipment returns every equipment identifier the catalog references.
func (s *Service) ListEquipment(ctx context.Context) ([]string, error) {
	equipment, err := s.repo.movements.ListEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return equipment, nil
}

// GetMovementCadence returns the cadence record of a movement.
func (s *Service) GetMovementCadence(ctx context.Context, movementID int) (CadenceRecord, error) {
	record, err := s.repo.cadence.Get(ctx, movementEntityID(movementID))
	if err != nil {
		return CadenceRecord{}, fmt.Errorf("get movement cadence: %w", err)
	}
	return record, nil
}

// SetMovementCadence overrides the minimum interval of a movement while
// keeping its last-performed timestamp.
func (s *Service) SetMovementCadence(ctx context.Context, movementID int, intervalDays int) error {
	if intervalDays < 0 {
		return fmt.Errorf("interval days must not be negative, got %d", intervalDays)
	}

	entityID := movementEntityID(movementID)
	record, err := s.repo.cadence.Get(ctx, entityID)
	if errors.Is(err, ErrNotFound) {
		record = CadenceRecord{EntityID: entityID}
	} else if err != nil {
		return fmt.Errorf("get movement cadence: %w", err)
	}
	record.MinIntervalDays = intervalDays

	if err = s.repo.cadence.Upsert(ctx, record); err != nil {
		return fmt.Errorf("set movement cadence: %w", err)
	}
	return nil
}
