package main

import (
	"testing"

	"github.com/myrjola/dailywod/internal/e2etest"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

func Test_application_movements(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	doc, err := client.GetDoc(ctx, "/movements")
	if err != nil {
		t.Fatalf("Failed to get movements page: %v", err)
	}

	if doc.Find("ul.movements li").Length() == 0 {
		t.Fatal("Expected movements in the catalog listing")
	}
	if doc.Find("a:contains('Deadlift')").Length() == 0 {
		t.Error("Expected Deadlift in the catalog listing")
	}
}

func Test_application_movementCadence(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	doc, err := client.GetDoc(ctx, "/movements/1")
	if err != nil {
		t.Fatalf("Failed to get movement page: %v", err)
	}

	doc, err = client.SubmitForm(ctx, doc, "/movements/1/cadence", map[string]string{
		"Minimum rest days": "14",
	})
	if err != nil {
		t.Fatalf("Failed to submit cadence: %v", err)
	}

	if doc.Find("input[name='interval_days'][value='14']").Length() != 1 {
		t.Error("Expected cadence input to show the saved value")
	}

	var intervalDays int
	row := server.DB().QueryRowContext(ctx,
		"SELECT min_interval_days FROM cadence_records WHERE entity_id = 'movement:1'")
	if err = row.Scan(&intervalDays); err != nil {
		t.Fatalf("Failed to query cadence record: %v", err)
	}
	if intervalDays != 14 {
		t.Errorf("Expected min_interval_days 14, got %d", intervalDays)
	}
}

func Test_application_movementWithoutCadenceRecord(t *testing.T) {
	ctx := t.Context()
	// An unseeded pool has no cadence records at all.
	base := testLookupEnv(t)
	lookupEnv := func(key string) (string, bool) {
		if key == "DAILYWOD_SEED_POOL" {
			return "false", true
		}
		return base(key)
	}
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), lookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	doc, err := server.Client().GetDoc(ctx, "/movements/1")
	if err != nil {
		t.Fatalf("Failed to get movement page: %v", err)
	}

	if doc.Find("p:contains('Never performed.')").Length() != 1 {
		t.Error("Expected the movement to read as never performed")
	}
	if doc.Find("input[name='interval_days'][value='0']").Length() != 1 {
		t.Error("Expected a zero-day cadence input for a movement without a record")
	}
}

func Test_application_movementNotFound(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	resp, err := server.Client().Get(ctx, "/movements/9999")
	if err != nil {
		t.Fatalf("Failed to get movement: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}
