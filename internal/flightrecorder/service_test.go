package flightrecorder_test

import (
	"os"
	"strings"
	"testing"

	"github.com/myrjola/dailywod/internal/flightrecorder"
	"github.com/myrjola/dailywod/internal/testhelpers"
)

func TestService_StartStop(t *testing.T) {
	traceDir := t.TempDir()

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	service, err := flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		MinAge:          0,
		MaxBytes:        0,
		TracesDirectory: traceDir,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := t.Context()

	if err = service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	service.Stop(ctx)
}

func TestService_Capture(t *testing.T) {
	traceDir := t.TempDir()

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	service, err := flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		MinAge:          0,
		MaxBytes:        0,
		TracesDirectory: traceDir,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := t.Context()

	if err = service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer service.Stop(ctx)

	service.Capture(ctx, "timeout")

	entries, err := os.ReadDir(traceDir)
	if err != nil {
		t.Fatalf("read trace dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("want one trace file, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "timeout-") || !strings.HasSuffix(name, ".trace") {
		t.Errorf("unexpected trace filename: %s", name)
	}
}

func TestService_CaptureRespectsCooldown(t *testing.T) {
	traceDir := t.TempDir()

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	service, err := flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		MinAge:          0,
		MaxBytes:        0,
		TracesDirectory: traceDir,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := t.Context()

	if err = service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer service.Stop(ctx)

	service.Capture(ctx, "timeout")
	service.Capture(ctx, "timeout")

	entries, err := os.ReadDir(traceDir)
	if err != nil {
		t.Fatalf("read trace dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("cooldown should drop the second capture, got %d files", len(entries))
	}
}

func TestService_RequiresLogger(t *testing.T) {
	_, err := flightrecorder.New(flightrecorder.Config{
		Logger:          nil,
		MinAge:          0,
		MaxBytes:        0,
		TracesDirectory: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for missing logger")
	}
}
