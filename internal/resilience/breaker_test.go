package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func newTestBreaker(threshold int, reset time.Duration) (*Breaker, *time.Time) {
	b := NewBreaker("test", Settings{FailureThreshold: threshold, ResetTimeout: reset})
	current := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return current }
	return b, &current
}

func fail(context.Context) error    { return errBoom }
func succeed(context.Context) error { return nil }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := b.Do(context.Background(), fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: expected operation error, got %v", i, err)
		}
	}

	if got := b.Stats().State; got != StateOpen {
		t.Fatalf("expected open after %d failures, got %s", 3, got)
	}
	if err := b.Do(context.Background(), succeed); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen while open, got %v", err)
	}
	if b.Stats().TotalRejects != 1 {
		t.Fatalf("expected 1 reject, got %d", b.Stats().TotalRejects)
	}
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.Do(context.Background(), fail)
	b.Do(context.Background(), fail)
	b.Do(context.Background(), succeed)

	stats := b.Stats()
	if stats.State != StateClosed {
		t.Fatalf("expected closed, got %s", stats.State)
	}
	if stats.ConsecutiveFailures != 0 {
		t.Fatalf("expected success to reset consecutive failures, got %d", stats.ConsecutiveFailures)
	}
}

func TestBreakerHalfOpenTrialSuccessCloses(t *testing.T) {
	b, current := newTestBreaker(2, time.Minute)

	b.Do(context.Background(), fail)
	b.Do(context.Background(), fail)
	if got := b.Stats().State; got != StateOpen {
		t.Fatalf("expected open, got %s", got)
	}

	*current = current.Add(time.Minute + time.Second)

	if err := b.Do(context.Background(), succeed); err != nil {
		t.Fatalf("trial call should pass through, got %v", err)
	}
	if got := b.Stats().State; got != StateClosed {
		t.Fatalf("expected closed after trial success, got %s", got)
	}
}

func TestBreakerHalfOpenTrialFailureReopens(t *testing.T) {
	b, current := newTestBreaker(2, time.Minute)

	b.Do(context.Background(), fail)
	b.Do(context.Background(), fail)
	*current = current.Add(2 * time.Minute)

	if err := b.Do(context.Background(), fail); !errors.Is(err, errBoom) {
		t.Fatalf("trial call should pass through, got %v", err)
	}
	if got := b.Stats().State; got != StateOpen {
		t.Fatalf("expected reopened after trial failure, got %s", got)
	}
	if err := b.Do(context.Background(), succeed); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen after reopen, got %v", err)
	}
}

func TestBreakerHalfOpenSingleTrial(t *testing.T) {
	b, current := newTestBreaker(1, time.Minute)

	b.Do(context.Background(), fail)
	*current = current.Add(2 * time.Minute)

	// First admission moves to half-open with a trial in flight; a second
	// concurrent admission must be rejected.
	if err := b.admit(); err != nil {
		t.Fatalf("first admission should pass, got %v", err)
	}
	if err := b.admit(); !errors.Is(err, ErrOpen) {
		t.Fatalf("second admission during trial should reject, got %v", err)
	}
	b.settle(nil)

	if got := b.Stats().State; got != StateClosed {
		t.Fatalf("expected closed after settled trial, got %s", got)
	}
}

func TestBreakerTimeoutThresholdBoundsCalls(t *testing.T) {
	b := NewBreaker("slow", Settings{FailureThreshold: 1, ResetTimeout: time.Minute, TimeoutThreshold: 10 * time.Millisecond})

	err := b.Do(context.Background(), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if got := b.Stats().State; got != StateOpen {
		t.Fatalf("timeout should count as failure and open, got %s", got)
	}
}

func TestBreakerReset(t *testing.T) {
	b, _ := newTestBreaker(1, time.Minute)

	b.Do(context.Background(), fail)
	if b.Available() {
		t.Fatal("expected unavailable while open")
	}

	b.Reset()
	if !b.Available() {
		t.Fatal("expected available after reset")
	}
	if err := b.Do(context.Background(), succeed); err != nil {
		t.Fatalf("expected call to pass after reset, got %v", err)
	}
}
