package providers

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAsRateLimitErrorUnwraps(t *testing.T) {
	inner := &RateLimitError{Provider: "fastline", StatusCode: 429, RetryAfter: 30 * time.Second}
	wrapped := fmt.Errorf("fetch failed: %w", inner)

	rle, ok := AsRateLimitError(wrapped)
	if !ok {
		t.Fatal("expected wrapped rate limit error to unwrap")
	}
	if rle.Provider != "fastline" || rle.RetryAfter != 30*time.Second {
		t.Fatalf("unexpected unwrapped error %+v", rle)
	}
}

func TestAsRateLimitErrorMiss(t *testing.T) {
	if _, ok := AsRateLimitError(errors.New("plain")); ok {
		t.Fatal("plain error must not match")
	}
	if _, ok := AsRateLimitError(nil); ok {
		t.Fatal("nil must not match")
	}
}

func TestIsDataShapeError(t *testing.T) {
	err := fmt.Errorf("mapping: %w", &DataShapeError{Provider: "scorepulse", Field: "home_score"})
	if !IsDataShapeError(err) {
		t.Fatal("expected wrapped shape error to match")
	}
	if IsDataShapeError(errors.New("other")) {
		t.Fatal("unrelated error must not match")
	}
}

func TestRateLimitErrorMessage(t *testing.T) {
	err := &RateLimitError{StatusCode: 429}
	if got := err.Error(); got != "provider rate limited (status=429)" {
		t.Fatalf("unexpected message %q", got)
	}
}
