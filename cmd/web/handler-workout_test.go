package main

import (
	"strings"
	"testing"

	"github.com/myrjola/dailywod/internal/e2etest"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

func Test_application_workoutComplete(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}

	doc, err = client.SubmitForm(ctx, doc, "/workouts/select", nil)
	if err != nil {
		t.Fatalf("Failed to select workout: %v", err)
	}

	entryID := strings.TrimPrefix(doc.Url.Path, "/workouts/")
	if entryID == "" || strings.Contains(entryID, "/") {
		t.Fatalf("Unexpected workout URL: %s", doc.Url.Path)
	}

	// The workout page lists at least one movement.
	if doc.Find("a.movement").Length() == 0 {
		t.Error("Expected at least one movement link on the workout page")
	}

	doc, err = client.SubmitForm(ctx, doc, "/workouts/"+entryID+"/complete", nil)
	if err != nil {
		t.Fatalf("Failed to complete workout: %v", err)
	}

	// Completing clears the suggestion and returns to the home page.
	if doc.Url.Path != "/" {
		t.Errorf("Expected redirect to home page, got %s", doc.Url.Path)
	}
	checkButtonPresence(t, doc, "Pick a workout", 1)

	// The pool page shows the entry as performed today.
	var count int
	row := server.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pool_entries WHERE id = ? AND last_performed IS NOT NULL", entryID)
	if err = row.Scan(&count); err != nil {
		t.Fatalf("Failed to query pool entry: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected entry %s to have last_performed set", entryID)
	}

	// The cadence records of the performed movements are updated too.
	row = server.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cadence_records
		 WHERE last_performed_at IS NOT NULL
		   AND entity_id IN (SELECT 'movement:' || movement_id FROM pool_entry_movements WHERE entry_id = ?)`,
		entryID)
	if err = row.Scan(&count); err != nil {
		t.Fatalf("Failed to query cadence records: %v", err)
	}
	if count == 0 {
		t.Error("Expected performed movements to have cadence records updated")
	}
}

func Test_application_workoutNotFound(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	resp, err := server.Client().Get(ctx, "/workouts/no-such-entry")
	if err != nil {
		t.Fatalf("Failed to get workout: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}
