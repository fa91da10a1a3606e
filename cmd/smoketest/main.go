package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/myrjola/dailywod/internal/e2etest"
	"github.com/myrjola/dailywod/internal/logging"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

// TestSelectionFlow exercises the core selection loop: pick a workout from
// the pool and mark it as done.
func TestSelectionFlow(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return fmt.Errorf("get home page: %w", err)
	}

	if doc, err = client.SubmitForm(ctx, doc, "/workouts/select", nil); err != nil {
		return fmt.Errorf("select workout: %w", err)
	}
	if !strings.HasPrefix(doc.Url.Path, "/workouts/") {
		return fmt.Errorf("expected workout page, got %s", doc.Url.Path)
	}
	entryID := strings.TrimPrefix(doc.Url.Path, "/workouts/")

	if _, err = client.SubmitForm(ctx, doc, "/workouts/"+entryID+"/complete", nil); err != nil {
		return fmt.Errorf("complete workout: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestSelectionFlow(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing selection flow", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
