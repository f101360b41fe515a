package resilience

import (
	"sync"
	"time"
)

// Decision is the outcome of one token consumption attempt.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// BucketStatus is a read-only view of a token bucket.
type BucketStatus struct {
	Capacity  int `json:"capacity"`
	Remaining int `json:"remaining"`
}

// TokenBucket is a process-wide rate limiter for one upstream provider.
// Tokens refill continuously at capacity per refill interval.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per nanosecond
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket constructs a bucket holding capacity tokens refilled over the given interval.
func NewTokenBucket(capacity int, refillInterval time.Duration) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	if refillInterval <= 0 {
		refillInterval = time.Second
	}
	now := time.Now
	return &TokenBucket{
		capacity:   float64(capacity),
		refillRate: float64(capacity) / float64(refillInterval),
		tokens:     float64(capacity),
		lastRefill: now(),
		now:        now,
	}
}

// Consume takes one token if available. When exhausted it reports how long
// until the next token without blocking.
func (b *TokenBucket) Consume() Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens >= 1 {
		b.tokens--
		return Decision{Allowed: true}
	}

	deficit := 1 - b.tokens
	retryAfter := time.Duration(deficit / b.refillRate)
	return Decision{Allowed: false, RetryAfter: retryAfter}
}

// Status reports current capacity and whole tokens remaining.
func (b *TokenBucket) Status() BucketStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return BucketStatus{
		Capacity:  int(b.capacity),
		Remaining: int(b.tokens),
	}
}

// refill advances the token count. Caller must hold the mutex.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	b.tokens += float64(elapsed) * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}
