package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when a breaker rejects a call without attempting it.
var ErrOpen = errors.New("circuit breaker open")

// State is the breaker lifecycle position.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Settings configures one breaker.
type Settings struct {
	// FailureThreshold is the consecutive failure count that opens the breaker.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before permitting a trial call.
	ResetTimeout time.Duration
	// TimeoutThreshold bounds each guarded call; exceeding it counts as a failure.
	TimeoutThreshold time.Duration
}

// Stats is a read-only view of breaker health.
type Stats struct {
	Name                string        `json:"name"`
	State               State         `json:"state"`
	ConsecutiveFailures int           `json:"consecutiveFailures"`
	TotalFailures       int64         `json:"totalFailures"`
	TotalSuccesses      int64         `json:"totalSuccesses"`
	TotalRejects        int64         `json:"totalRejects"`
	LastFailure         time.Time     `json:"lastFailure,omitzero"`
	OpenFor             time.Duration `json:"openFor,omitempty"`
}

// Breaker guards calls to one failing-prone dependency. Closed passes calls
// through, Open rejects immediately, HalfOpen permits a single trial call
// after ResetTimeout.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu             sync.Mutex
	state          State
	failures       int
	totalFailures  int64
	totalSuccesses int64
	totalRejects   int64
	lastFailure    time.Time
	openedAt       time.Time
	trialInFlight  bool
}

// NewBreaker constructs a closed breaker with the given settings.
func NewBreaker(name string, settings Settings) *Breaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 3
	}
	if settings.ResetTimeout <= 0 {
		settings.ResetTimeout = 30 * time.Second
	}
	return &Breaker{
		name:     name,
		settings: settings,
		now:      time.Now,
		state:    StateClosed,
	}
}

// Name returns the breaker's identifier.
func (b *Breaker) Name() string {
	return b.name
}

// Do runs op under the breaker, bounding it with TimeoutThreshold when set.
// Returns ErrOpen without calling op when the breaker is open.
func (b *Breaker) Do(ctx context.Context, op func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	if b.settings.TimeoutThreshold > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.settings.TimeoutThreshold)
		defer cancel()
	}

	err := op(ctx)
	b.settle(err)
	return err
}

// Available reports whether a call would currently be admitted.
func (b *Breaker) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.ResetTimeout {
		return true
	}
	return b.state != StateOpen && !(b.state == StateHalfOpen && b.trialInFlight)
}

// Reset returns the breaker to its closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.trialInFlight = false
}

// Stats returns a snapshot of breaker health.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := Stats{
		Name:                b.name,
		State:               b.state,
		ConsecutiveFailures: b.failures,
		TotalFailures:       b.totalFailures,
		TotalSuccesses:      b.totalSuccesses,
		TotalRejects:        b.totalRejects,
		LastFailure:         b.lastFailure,
	}
	if b.state == StateOpen {
		stats.OpenFor = b.now().Sub(b.openedAt)
	}
	return stats
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.settings.ResetTimeout {
			b.totalRejects++
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.trialInFlight = true
		return nil
	case StateHalfOpen:
		if b.trialInFlight {
			b.totalRejects++
			return ErrOpen
		}
		b.trialInFlight = true
		return nil
	}
	return nil
}

func (b *Breaker) settle(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	trial := b.state == StateHalfOpen
	b.trialInFlight = false

	if err == nil {
		b.totalSuccesses++
		b.failures = 0
		b.state = StateClosed
		return
	}

	b.totalFailures++
	b.failures++
	b.lastFailure = b.now()

	if trial || b.failures >= b.settings.FailureThreshold {
		b.state = StateOpen
		b.openedAt = b.now()
	}
}
