package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/myrjola/dailywod/internal/e2etest"
	"github.com/myrjola/dailywod/internal/logging"
	"github.com/myrjola/dailywod/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	scenarioTimeout         = 30 * time.Second
	maxConcurrentOperations = 20
	numClients              = 50
	successRateThreshold    = 95.0
	expectedArgsCount       = 2
	percentageMultiplier    = 100
)

// SelectionScenario drives a full visitor session: set preferences, pick a
// workout, read it, and mark it as done.
func SelectionScenario(ctx context.Context, client *e2etest.Client, logger *slog.Logger) error {
	doc, err := client.GetDoc(ctx, "/preferences")
	if err != nil {
		return fmt.Errorf("get preferences: %w", err)
	}

	formData := map[string]string{
		"Any equipment": "true",
	}
	if _, err = client.SubmitForm(ctx, doc, "/preferences", formData); err != nil {
		return fmt.Errorf("submit preferences: %w", err)
	}

	if doc, err = client.GetDoc(ctx, "/"); err != nil {
		return fmt.Errorf("get home page: %w", err)
	}

	if doc, err = client.SubmitForm(ctx, doc, "/workouts/select", nil); err != nil {
		return fmt.Errorf("select workout: %w", err)
	}
	if !strings.HasPrefix(doc.Url.Path, "/workouts/") {
		return errors.New("selection did not land on a workout page")
	}
	entryID := strings.TrimPrefix(doc.Url.Path, "/workouts/")

	// Browse the first prescribed movement like a real visitor would.
	if href, exists := doc.Find("a.movement").First().Attr("href"); exists {
		if _, err = client.GetDoc(ctx, href); err != nil {
			return fmt.Errorf("get movement page: %w", err)
		}
	}

	if _, err = client.SubmitForm(ctx, doc, "/workouts/"+entryID+"/complete", nil); err != nil {
		return fmt.Errorf("complete workout: %w", err)
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "Selection scenario completed",
		slog.String("entry_id", entryID))

	return nil
}

// RunLoadTest hammers the selection flow with concurrent clients.
func RunLoadTest(ctx context.Context, url string, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_clients", numClients))

	var successCount, failureCount int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for i := range numClients {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			client, err := e2etest.NewClient(url)
			if err != nil {
				atomic.AddInt64(&failureCount, 1)
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Client creation failed",
					slog.Int("client_index", i),
					slog.Any("error", err))
				return nil
			}

			if err = SelectionScenario(scenarioCtx, client, logger); err != nil {
				atomic.AddInt64(&failureCount, 1)
				// Log individual failures but don't stop the entire test
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.Int("client_index", i),
					slog.Any("error", err))
				return nil
			}

			atomic.AddInt64(&successCount, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount) / float64(numClients) * percentageMultiplier

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount),
		slog.Int64("failed", failureCount),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}

	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)

	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}

	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	// Warm up with a single scenario before applying load.
	if err = SelectionScenario(ctx, client, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "warmup scenario failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Warmup passed ✓")

	if err = RunLoadTest(ctx, url, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)))
}
