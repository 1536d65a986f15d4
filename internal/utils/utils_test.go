package utils

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	start := time.Now()
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("expected no pause for zero duration, got %s", elapsed)
	}

	start = time.Now()
	if err := WaitFor(context.Background(), 30*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("expected at least 30ms pause, got %s", elapsed)
	}
}

func TestWaitForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancelled wait took %s", elapsed)
	}
}

func TestWaitForLeavesNothingRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := runtime.NumGoroutine()
	for range 200 {
		_ = WaitFor(ctx, time.Hour)
	}

	if after := runtime.NumGoroutine(); after > before+10 {
		t.Fatalf("cancelled waits left goroutines behind: %d before, %d after", before, after)
	}
}
