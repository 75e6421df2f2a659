package utils

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"
)

func TestPerMinute(t *testing.T) {
	if got := PerMinute(10, 0); got != 0 {
		t.Fatalf("expected 0 for zero elapsed, got %v", got)
	}
	if got := PerMinute(30, 2*time.Minute); got != 15 {
		t.Fatalf("expected 15 per minute, got %v", got)
	}
	if got := PerMinute(5, 30*time.Second); got != 10 {
		t.Fatalf("expected 10 per minute, got %v", got)
	}
}

func TestSecondsToDuration(t *testing.T) {
	if got := SecondsToDuration(-1); got != 0 {
		t.Fatalf("expected negative seconds to clamp to 0, got %v", got)
	}
	if got := SecondsToDuration(0.25); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
	if got := SecondsToDuration(math.NaN()); got != 0 {
		t.Fatalf("expected NaN to clamp to 0, got %v", got)
	}
	for _, seconds := range []float64{1e300, math.Inf(1), 1e10} {
		if got := SecondsToDuration(seconds); got != time.Duration(math.MaxInt64) {
			t.Fatalf("expected %v seconds to saturate, got %v", seconds, got)
		}
	}
	if got := SecondsToDuration(1e9); got != time.Duration(1e18) {
		t.Fatalf("expected 1e9 seconds to convert exactly, got %v", got)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("collector.export", "write snapshot", fs.ErrPermission)
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected wrapped permission error, got %v", err)
	}
	if !strings.Contains(err.Error(), "collector.export: write snapshot") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if OpOf(err) != "collector.export" {
		t.Fatalf("unexpected op: %q", OpOf(err))
	}
	if OpOf(errors.New("plain")) != "" {
		t.Fatalf("expected empty op for non-app error")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn", false)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected log output: %s", out)
	}
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("bogus") != slog.LevelInfo {
		t.Fatalf("unexpected level parsing")
	}
}
