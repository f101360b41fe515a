package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	notModified     int
	rateLimitSkips  int
	breakerRejects  int
	lastCallLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about provider calls,
// consensus outcomes, monitor cycles, and validations. It is intentionally
// simple so it can be swapped for a real backend later.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*providerStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*providerStats),
		otel:  otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.withStats(provider, func(stats *providerStats) {
		stats.calls++
		stats.lastCallLatency = duration
		if err != nil {
			stats.errors++
		}
	})
	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordNotModified tracks a conditional fetch that returned no new data.
func (r *Recorder) RecordNotModified(provider string) {
	if r == nil {
		return
	}
	r.withStats(provider, func(stats *providerStats) { stats.notModified++ })
	if r.otel != nil {
		r.otel.recordNotModified(provider)
	}
}

// RecordRateLimitSkip tracks a provider call short-circuited by its token bucket.
func (r *Recorder) RecordRateLimitSkip(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}
	r.withStats(provider, func(stats *providerStats) { stats.rateLimitSkips++ })
	if r.otel != nil {
		r.otel.recordRateLimitSkip(provider, retryAfter)
	}
}

// RecordBreakerReject tracks a provider call rejected by an open circuit breaker.
func (r *Recorder) RecordBreakerReject(provider string) {
	if r == nil {
		return
	}
	r.withStats(provider, func(stats *providerStats) { stats.breakerRejects++ })
	if r.otel != nil {
		r.otel.recordBreakerReject(provider)
	}
}

// RecordConsensus tracks one reconciliation outcome.
func (r *Recorder) RecordConsensus(status string, confidence float64, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordConsensus(status, confidence, duration)
}

// RecordMonitorCycle tracks monitor cycles and failed game checks within them.
func (r *Recorder) RecordMonitorCycle(duration time.Duration, failedChecks int) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordMonitorCycle(duration, failedChecks)
}

// RecordGameEvent tracks one emitted game event by type.
func (r *Recorder) RecordGameEvent(eventType string) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordGameEvent(eventType)
}

// RecordValidation tracks one promotion validation outcome.
func (r *Recorder) RecordValidation(approved bool, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordValidation(approved, duration)
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Snapshot is a copy of the current stats for one provider.
type Snapshot struct {
	Calls           int
	Errors          int
	NotModified     int
	RateLimitSkips  int
	BreakerRejects  int
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	stats := r.snapshot(provider)
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		NotModified:     stats.notModified,
		RateLimitSkips:  stats.rateLimitSkips,
		BreakerRejects:  stats.breakerRejects,
		LastCallLatency: stats.lastCallLatency,
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

func (r *Recorder) withStats(provider string, update func(*providerStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	update(stats)
}

func (r *Recorder) snapshot(provider string) providerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.stats[provider]; ok && stats != nil {
		return *stats
	}
	return providerStats{}
}
