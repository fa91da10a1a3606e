package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/dailywod/internal/e2etest"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

func testLookupEnv(t *testing.T) func(string) (string, bool) {
	t.Helper()
	tracesDir := t.TempDir()
	return func(key string) (string, bool) {
		switch key {
		case "DAILYWOD_SQLITE_URL":
			return ":memory:", true
		case "DAILYWOD_ADDR":
			return "localhost:0", true
		case "DAILYWOD_TRACES_DIR":
			return tracesDir, true
		default:
			return "", false
		}
	}
}

func checkButtonPresence(t *testing.T, doc *goquery.Document, buttonText string, expectedCount int) {
	t.Helper()
	count := doc.Find("button:contains('" + buttonText + "')").Length()
	if count != expectedCount {
		t.Errorf("Expected %d '%s' button(s), but found %d", expectedCount, buttonText, count)
	}
}

func Test_application_home(t *testing.T) {
	var (
		ctx = t.Context()
		doc *goquery.Document
	)
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	t.Run("Initial state", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/")
		if err != nil {
			t.Fatalf("Failed to get document: %v", err)
		}

		checkButtonPresence(t, doc, "Pick a workout", 1)
		checkButtonPresence(t, doc, "Mark as done", 0)
	})

	t.Run("After selecting a workout", func(t *testing.T) {
		doc, err = client.SubmitForm(ctx, doc, "/workouts/select", nil)
		if err != nil {
			t.Fatalf("Failed to select workout: %v", err)
		}

		// The redirect lands on the workout page.
		if !strings.HasPrefix(doc.Url.Path, "/workouts/") {
			t.Errorf("Expected redirect to workout page, got %s", doc.Url.Path)
		}
		checkButtonPresence(t, doc, "Mark as done", 1)

		// The suggestion is remembered on the home page.
		doc, err = client.GetDoc(ctx, "/")
		if err != nil {
			t.Fatalf("Failed to get document: %v", err)
		}
		checkButtonPresence(t, doc, "Mark as done", 1)
		checkButtonPresence(t, doc, "Pick another workout", 1)
	})
}

func Test_crossOriginProtection(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	// Create a malicious client that simulates cross-origin requests
	maliciousClient, err := e2etest.NewClientWithSecFetchSite(server.URL(), "cross-site")
	if err != nil {
		t.Fatalf("Failed to create malicious client: %v", err)
	}

	doc, err := maliciousClient.GetDoc(ctx, "/")
	if err != nil {
		t.Fatalf("Failed to get home page: %v", err)
	}

	// Try to submit the selection form with cross-origin headers.
	_, err = maliciousClient.SubmitForm(ctx, doc, "/workouts/select", nil)
	if err == nil {
		t.Error("Expected cross-origin form submission to be blocked, but it succeeded")
	}

	if !containsStatusError(err, 403) && !containsStatusError(err, 400) {
		t.Errorf("Expected status error 403 or 400 for blocked request, got: %v", err)
	}
}

// containsStatusError checks if the error contains a specific HTTP status code.
func containsStatusError(err error, statusCode int) bool {
	return err != nil &&
		(err.Error() == fmt.Sprintf("unexpected status code: %d", statusCode) ||
			strings.Contains(err.Error(), fmt.Sprintf("status code: %d", statusCode)))
}
