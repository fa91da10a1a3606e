package pool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/dailywod/internal/pool"
	"github.com/myrjola/dailywod/internal/sqlite"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

// newTestService spins up an in-memory database seeded with the movement
// catalog fixtures and a deterministic service on top of it.
func newTestService(t *testing.T) (*pool.Service, *sqlite.Database) {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("Failed to close test database: %v", closeErr)
		}
	})

	// A nil random source makes selection deterministic.
	return pool.NewService(db, logger, nil), db
}

func ensureTestPool(ctx context.Context, t *testing.T, svc *pool.Service, now time.Time) []pool.Entry {
	t.Helper()
	if err := svc.EnsurePool(ctx, now); err != nil {
		t.Fatalf("Failed to ensure pool: %v", err)
	}
	entries, err := svc.ListEntries(ctx)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Expected a populated pool")
	}
	return entries
}

func Test_EnsurePool_Idempotent(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	first := ensureTestPool(ctx, t, svc, now)

	// A second run against the same catalog must not add duplicates.
	if err := svc.EnsurePool(ctx, now.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Failed to ensure pool a second time: %v", err)
	}
	second, err := svc.ListEntries(ctx)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}

	if len(first) != len(second) {
		t.Errorf("Pool size changed from %d to %d on the second generation run", len(first), len(second))
	}
}

func Test_EnsurePool_BackfillsCadenceDefaults(t *testing.T) {
	ctx := t.Context()
	svc, db := newTestService(t)
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	ensureTestPool(ctx, t, svc, now)

	// Simulate a movement that entered the catalog after the pool was
	// generated and therefore has no cadence record yet.
	if _, err := db.ReadWrite.ExecContext(ctx,
		"DELETE FROM cadence_records WHERE entity_id = 'movement:1'"); err != nil {
		t.Fatalf("Failed to delete cadence record: %v", err)
	}

	if err := svc.EnsurePool(ctx, now.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Failed to ensure pool a second time: %v", err)
	}

	record, err := svc.GetMovementCadence(ctx, 1)
	if err != nil {
		t.Fatalf("Expected a backfilled cadence record, got %v", err)
	}
	if record.MinIntervalDays == 0 {
		t.Error("Expected a group-derived default interval, got 0")
	}
}

func Test_SelectWorkout_RespectsEntryCadence(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	day0 := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	ensureTestPool(ctx, t, svc, day0)

	chosen, err := svc.SelectWorkout(ctx, day0, pool.SelectionOptions{})
	if err != nil {
		t.Fatalf("Failed to select workout: %v", err)
	}
	if chosen == nil {
		t.Fatal("Expected a workout from a fresh pool")
	}

	if err = svc.MarkPerformed(ctx, chosen.ID, day0); err != nil {
		t.Fatalf("Failed to mark workout performed: %v", err)
	}

	// The performed entry must not come back until its cadence has elapsed.
	for day := 0; day < chosen.CadenceDays; day++ {
		asOf := day0.AddDate(0, 0, day)
		var next *pool.Entry
		next, err = svc.SelectWorkout(ctx, asOf, pool.SelectionOptions{})
		if err != nil {
			t.Fatalf("Failed to select workout on day %d: %v", day, err)
		}
		if next != nil && next.ID == chosen.ID {
			t.Errorf("Entry %q returned on day %d despite a %d-day cadence", chosen.Name, day, chosen.CadenceDays)
		}
	}
}

func Test_MarkPerformed_UpdatesEntryAndMovementsAtomically(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	entries := ensureTestPool(ctx, t, svc, now)

	entry := entries[0]
	performedAt := time.Date(2025, 3, 12, 17, 30, 0, 0, time.UTC)

	if err := svc.MarkPerformed(ctx, entry.ID, performedAt); err != nil {
		t.Fatalf("Failed to mark workout performed: %v", err)
	}

	updated, err := svc.GetEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if updated.LastPerformed == nil || !updated.LastPerformed.Equal(performedAt) {
		t.Errorf("Entry last performed = %v, want %v", updated.LastPerformed, performedAt)
	}
	if diff := cmp.Diff(entry.Movements, updated.Movements); diff != "" {
		t.Errorf("Prescriptions changed by marking performed (-before +after):\n%s", diff)
	}

	for _, rx := range entry.Movements {
		record, recordErr := svc.GetMovementCadence(ctx, rx.MovementID)
		if recordErr != nil {
			t.Fatalf("Failed to get cadence for movement %d: %v", rx.MovementID, recordErr)
		}
		if record.LastPerformedAt == nil || !record.LastPerformedAt.Equal(performedAt) {
			t.Errorf("Movement %d last performed = %v, want %v", rx.MovementID, record.LastPerformedAt, performedAt)
		}
	}
}

func Test_MarkPerformed_UnknownEntry(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	ensureTestPool(ctx, t, svc, time.Now())

	err := svc.MarkPerformed(ctx, "no-such-entry", time.Now())
	if !errors.Is(err, pool.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an unknown entry, got %v", err)
	}
}

func Test_SelectWorkout_EmptyPoolAfterDisablingEverything(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	entries := ensureTestPool(ctx, t, svc, now)

	for _, entry := range entries {
		if err := svc.SetEntryEnabled(ctx, entry.ID, false); err != nil {
			t.Fatalf("Failed to disable entry %s: %v", entry.ID, err)
		}
	}

	chosen, err := svc.SelectWorkout(ctx, now, pool.SelectionOptions{})
	if err != nil {
		t.Fatalf("Select against a disabled pool should not error, got %v", err)
	}
	if chosen != nil {
		t.Errorf("Expected no workout from a fully disabled pool, got %q", chosen.Name)
	}
}

func Test_SelectWorkout_SingleEligibleEntry(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	entries := ensureTestPool(ctx, t, svc, now)

	keep := entries[0]
	for _, entry := range entries[1:] {
		if err := svc.SetEntryEnabled(ctx, entry.ID, false); err != nil {
			t.Fatalf("Failed to disable entry %s: %v", entry.ID, err)
		}
	}

	// With exactly one enabled, never-performed entry the selection has no
	// choice to make.
	for range 5 {
		chosen, err := svc.SelectWorkout(ctx, now, pool.SelectionOptions{})
		if err != nil {
			t.Fatalf("Failed to select workout: %v", err)
		}
		if chosen == nil || chosen.ID != keep.ID {
			t.Fatalf("Expected %q every time, got %v", keep.Name, chosen)
		}
	}
}

func Test_SelectWorkout_EquipmentFilter(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	ensureTestPool(ctx, t, svc, now)

	movements, err := svc.ListMovements(ctx)
	if err != nil {
		t.Fatalf("Failed to list movements: %v", err)
	}
	equipmentByMovement := make(map[int][]string, len(movements))
	for _, movement := range movements {
		equipmentByMovement[movement.ID] = movement.RequiredEquipment
	}

	// With no equipment on hand only fully equipment-free entries qualify.
	chosen, err := svc.SelectWorkout(ctx, now, pool.SelectionOptions{AvailableEquipment: []string{}})
	if err != nil {
		t.Fatalf("Failed to select workout: %v", err)
	}
	if chosen == nil {
		t.Fatal("Expected a bodyweight workout with no equipment available")
	}
	for _, rx := range chosen.Movements {
		if len(equipmentByMovement[rx.MovementID]) != 0 {
			t.Errorf("Entry %q requires equipment %v for movement %d despite an empty equipment set",
				chosen.Name, equipmentByMovement[rx.MovementID], rx.MovementID)
		}
	}
}

func Test_SelectWorkout_PreferenceFallback(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	entries := ensureTestPool(ctx, t, svc, now)

	// Keep a single enabled entry and prefer an intensity it does not have.
	keep := entries[0]
	for _, entry := range entries[1:] {
		if err := svc.SetEntryEnabled(ctx, entry.ID, false); err != nil {
			t.Fatalf("Failed to disable entry %s: %v", entry.ID, err)
		}
	}
	mismatched := pool.IntensityLow
	if keep.Intensity == pool.IntensityLow {
		mismatched = pool.IntensityHigh
	}

	chosen, err := svc.SelectWorkout(ctx, now, pool.SelectionOptions{PreferredIntensity: &mismatched})
	if err != nil {
		t.Fatalf("Failed to select workout: %v", err)
	}
	if chosen == nil {
		t.Fatal("Preference mismatch must fall back to the eligible set, not return nothing")
	}
	if chosen.ID != keep.ID {
		t.Errorf("Expected fallback to %q, got %q", keep.Name, chosen.Name)
	}
}

func Test_SetMovementCadence(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	ensureTestPool(ctx, t, svc, now)

	if err := svc.SetMovementCadence(ctx, 1, 14); err != nil {
		t.Fatalf("Failed to set movement cadence: %v", err)
	}

	record, err := svc.GetMovementCadence(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get movement cadence: %v", err)
	}
	if record.MinIntervalDays != 14 {
		t.Errorf("Expected interval of 14 days, got %d", record.MinIntervalDays)
	}

	if err = svc.SetMovementCadence(ctx, 1, -1); err == nil {
		t.Error("Expected an error for a negative interval")
	}
}
