package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFixedInterval_SpacesCalls(t *testing.T) {
	t.Parallel()

	gate := NewFixedInterval(40 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := gate.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}

	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Fatalf("expected at least two intervals between three calls, got %s", elapsed)
	}
}

func TestFixedInterval_RespectsContext(t *testing.T) {
	t.Parallel()

	gate := NewFixedInterval(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := gate.Wait(ctx); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	cancel()
	if err := gate.Wait(ctx); err == nil {
		t.Fatalf("expected error after cancel")
	}
}

func TestNewFixedInterval_NonPositiveIsUnlimited(t *testing.T) {
	t.Parallel()

	gate := NewFixedInterval(0)
	for i := 0; i < 100; i++ {
		if err := gate.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gate.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
