package main

import (
	"testing"

	"github.com/myrjola/dailywod/internal/e2etest"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

func Test_secureHeaders(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	resp, err := server.Client().Get(ctx, "/")
	if err != nil {
		t.Fatalf("Failed to get home page: %v", err)
	}
	defer resp.Body.Close()

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "deny",
		"Referrer-Policy":        "origin-when-cross-origin",
	}
	for header, want := range headers {
		if got := resp.Header.Get(header); got != want {
			t.Errorf("Expected header %s to be %q, got %q", header, want, got)
		}
	}
	if resp.Header.Get("Content-Security-Policy") == "" {
		t.Error("Expected Content-Security-Policy header to be set")
	}
}

func Test_timeout(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv(t), run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	t.Run("fast request succeeds", func(t *testing.T) {
		resp, getErr := client.Get(ctx, "/api/test/timeout?sleep_ms=0")
		if getErr != nil {
			t.Fatalf("Failed to get timeout endpoint: %v", getErr)
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
	})

	t.Run("slow request times out", func(t *testing.T) {
		resp, getErr := client.Get(ctx, "/api/test/timeout?sleep_ms=3000")
		if getErr != nil {
			t.Fatalf("Failed to get timeout endpoint: %v", getErr)
		}
		defer resp.Body.Close()
		if resp.StatusCode != 503 {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
	})
}
