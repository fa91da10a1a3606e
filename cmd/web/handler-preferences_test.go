package main

import (
	"strings"
	"testing"

	"github.com/myrjola/dailywod/internal/e2etest"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

func Test_application_preferences(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	doc, err := client.GetDoc(ctx, "/preferences")
	if err != nil {
		t.Fatalf("Failed to get preferences: %v", err)
	}

	// The catalog equipment shows up as checkboxes.
	if doc.Find("input[name='equipment']").Length() == 0 {
		t.Fatal("Expected equipment checkboxes on the preferences page")
	}
	if doc.Find("input[name='equipment'][value='barbell']").Length() != 1 {
		t.Error("Expected a barbell checkbox on the preferences page")
	}

	// Constrain to bodyweight only: uncheck everything including any_equipment.
	doc, err = client.SubmitForm(ctx, doc, "/preferences", nil)
	if err != nil {
		t.Fatalf("Failed to submit preferences: %v", err)
	}

	if doc.Find("#any_equipment[checked]").Length() != 0 {
		t.Error("Expected any_equipment to be unchecked after constraining")
	}

	// Every selected workout is now performable without equipment.
	for range 5 {
		workoutDoc, homeErr := client.GetDoc(ctx, "/")
		if homeErr != nil {
			t.Fatalf("Failed to get home page: %v", homeErr)
		}
		if workoutDoc, err = client.SubmitForm(ctx, workoutDoc, "/workouts/select", nil); err != nil {
			t.Fatalf("Failed to select workout: %v", err)
		}
		if !strings.HasPrefix(workoutDoc.Url.Path, "/workouts/") {
			t.Fatalf("Expected workout page, got %s", workoutDoc.Url.Path)
		}
		entryID := strings.TrimPrefix(workoutDoc.Url.Path, "/workouts/")

		var count int
		row := server.DB().QueryRowContext(ctx,
			`SELECT COUNT(*) FROM movement_equipment
			 WHERE movement_id IN (SELECT movement_id FROM pool_entry_movements WHERE entry_id = ?)`,
			entryID)
		if err = row.Scan(&count); err != nil {
			t.Fatalf("Failed to query movement equipment: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected bodyweight-only workout, entry %s requires equipment", entryID)
		}
	}
}

func Test_application_preferencesIntensity(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	doc, err := client.GetDoc(ctx, "/preferences")
	if err != nil {
		t.Fatalf("Failed to get preferences: %v", err)
	}

	doc, err = client.SubmitForm(ctx, doc, "/preferences", map[string]string{
		"Intensity": "high",
	})
	if err != nil {
		t.Fatalf("Failed to submit preferences: %v", err)
	}

	if doc.Find("select[name='intensity'] option[value='high'][selected]").Length() != 1 {
		t.Error("Expected high intensity to be selected after saving")
	}
}
