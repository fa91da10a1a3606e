package main

import (
	"testing"

	"github.com/myrjola/dailywod/internal/e2etest"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

func Test_application_pool(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	doc, err := client.GetDoc(ctx, "/pool")
	if err != nil {
		t.Fatalf("Failed to get pool page: %v", err)
	}

	rows := doc.Find("table.pool tbody tr")
	if rows.Length() == 0 {
		t.Fatal("Expected pool entries in the table")
	}

	// Every generated entry starts out enabled.
	if doc.Find("tr.disabled").Length() != 0 {
		t.Error("Expected no disabled entries after generation")
	}

	// Toggle the first entry off through its form.
	firstToggle := doc.Find("table.pool form").First()
	action, exists := firstToggle.Attr("action")
	if !exists {
		t.Fatal("Toggle form has no action attribute")
	}

	doc, err = client.SubmitForm(ctx, doc, action, nil)
	if err != nil {
		t.Fatalf("Failed to toggle entry: %v", err)
	}

	if doc.Find("tr.disabled").Length() != 1 {
		t.Error("Expected one disabled entry after toggling")
	}

	// Toggle it back on.
	doc, err = client.SubmitForm(ctx, doc, action, nil)
	if err != nil {
		t.Fatalf("Failed to toggle entry back: %v", err)
	}

	if doc.Find("tr.disabled").Length() != 0 {
		t.Error("Expected no disabled entries after re-enabling")
	}
}

func Test_application_poolToggleUnknownEntry(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	resp, err := server.Client().Post(ctx, "/pool/no-such-entry/toggle")
	if resp != nil {
		t.Errorf("Expected no document for unknown entry, got one")
	}
	if err == nil || !containsStatusError(err, 404) {
		t.Errorf("Expected status error 404, got: %v", err)
	}
}
