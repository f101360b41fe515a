package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/evidence"
	"game-trigger-service/internal/logging"
	"game-trigger-service/internal/metrics"
	"game-trigger-service/internal/providers"
	"game-trigger-service/internal/resilience"
)

// Source is one configured upstream: its client plus the breaker and token
// bucket that guard it. Breaker and limiter state is process-wide and owned
// solely by the fetch path.
type Source struct {
	Provider providers.GameProvider
	Breaker  *resilience.Breaker
	Limiter  *resilience.TokenBucket
}

// Options tunes one GetGameData call.
type Options struct {
	UseConditionalRequest bool
	Timeout               time.Duration
	SkipRateLimit         bool
}

// Result is the multi-source answer for one game. Success requires at least
// one provider to have returned data; Err explains total failure. Sources
// are ordered by configured provider priority, authoritative source first.
type Result struct {
	Success      bool
	Data         *domain.GameData
	Sources      []domain.SourceResponse
	EvidenceHash string
	Err          error
}

// Fetcher queries every configured provider concurrently and bundles their
// answers with evidence. One provider's failure never fails the call.
type Fetcher struct {
	sources    []Source
	evidence   evidence.Store
	validators *providers.ValidatorCache
	logger     *slog.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

// New constructs a Fetcher over the given sources.
func New(sources []Source, store evidence.Store, validators *providers.ValidatorCache, logger *slog.Logger, recorder *metrics.Recorder) *Fetcher {
	if validators == nil {
		validators = providers.NewValidatorCache(0, 0)
	}
	return &Fetcher{
		sources:    sources,
		evidence:   store,
		validators: validators,
		logger:     logger,
		metrics:    recorder,
		now:        time.Now,
	}
}

type sourceResult struct {
	response    *domain.SourceResponse
	capture     *evidence.SourceCapture
	notModified bool
	err         error
}

// GetGameData fetches the game from every provider concurrently with a
// settle-all join and persists the multi-source bundle as evidence.
func (f *Fetcher) GetGameData(ctx context.Context, gameID string, opts Options) Result {
	if len(f.sources) == 0 {
		return Result{Sources: []domain.SourceResponse{}, Err: errors.New("no providers configured")}
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	results := make([]sourceResult, len(f.sources))
	var wg sync.WaitGroup
	for i, src := range f.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = f.fetchSource(ctx, src, gameID, opts)
		}(i, src)
	}
	wg.Wait()

	responses := make([]domain.SourceResponse, 0, len(results))
	captures := make([]evidence.SourceCapture, 0, len(results))
	var failures []string
	notModifiedCount := 0

	for i, res := range results {
		name := f.sources[i].Provider.Name()
		switch {
		case res.err != nil:
			failures = append(failures, fmt.Sprintf("%s: %v", name, res.err))
		case res.notModified:
			notModifiedCount++
		case res.response != nil:
			responses = append(responses, *res.response)
			captures = append(captures, *res.capture)
		}
	}

	if len(responses) == 0 {
		err := f.describeTotalFailure(gameID, failures, notModifiedCount)
		logging.Warn(f.logger, "all providers returned no data",
			slog.String(logging.FieldGameID, gameID), "error", err)
		return Result{Sources: []domain.SourceResponse{}, Err: err}
	}

	result := Result{
		Success: true,
		Data:    &responses[0].Data,
		Sources: responses,
	}

	if f.evidence != nil {
		bundle := evidence.NewSourceBundle(gameID, f.now().UTC(), captures)
		hash, err := f.evidence.PutImmutable(ctx, bundle)
		if err != nil {
			// Evidence unavailability must not fail the fetch.
			logging.Error(f.logger, "evidence bundle persist failed", err,
				slog.String(logging.FieldGameID, gameID))
		} else {
			result.EvidenceHash = hash
		}
	}

	return result
}

func (f *Fetcher) fetchSource(ctx context.Context, src Source, gameID string, opts Options) sourceResult {
	name := src.Provider.Name()

	if !opts.SkipRateLimit && src.Limiter != nil {
		decision := src.Limiter.Consume()
		if !decision.Allowed {
			f.metrics.RecordRateLimitSkip(name, decision.RetryAfter)
			return sourceResult{err: &providers.RateLimitError{
				Provider:   name,
				RetryAfter: decision.RetryAfter,
				Message:    "local rate limit exhausted",
			}}
		}
	}

	var cond providers.Conditional
	if opts.UseConditionalRequest {
		cond = f.validators.Get(name, gameID)
	}

	var outcome providers.Outcome
	op := func(ctx context.Context) error {
		var fetchErr error
		outcome, fetchErr = src.Provider.FetchGame(ctx, gameID, cond)
		return fetchErr
	}

	start := f.now()
	var err error
	if src.Breaker != nil {
		err = src.Breaker.Do(ctx, op)
	} else {
		err = op(ctx)
	}
	elapsed := f.now().Sub(start)

	if errors.Is(err, resilience.ErrOpen) {
		f.metrics.RecordBreakerReject(name)
		return sourceResult{err: fmt.Errorf("%w: %s circuit open", providers.ErrProviderUnavailable, name)}
	}

	f.metrics.RecordProviderAttempt(name, elapsed, err)
	if err != nil {
		logging.Warn(f.logger, "provider fetch failed",
			slog.String(logging.FieldProvider, name),
			slog.String(logging.FieldGameID, gameID),
			"error", err)
		return sourceResult{err: err}
	}

	if outcome.NotModified {
		f.metrics.RecordNotModified(name)
		return sourceResult{notModified: true}
	}

	f.validators.Put(name, gameID, providers.Conditional{
		ETag:         outcome.ETag,
		LastModified: outcome.LastModified,
	})

	fetchedAt := f.now().UTC()
	return sourceResult{
		response: &domain.SourceResponse{
			Data:         outcome.Data,
			FetchedAt:    fetchedAt,
			ResponseTime: elapsed,
			ETag:         outcome.ETag,
			LastModified: outcome.LastModified,
		},
		capture: &evidence.SourceCapture{
			Provider:     name,
			Raw:          outcome.Raw,
			Normalized:   outcome.Data,
			FetchedAt:    fetchedAt,
			ResponseTime: elapsed,
		},
	}
}

func (f *Fetcher) describeTotalFailure(gameID string, failures []string, notModifiedCount int) error {
	if len(failures) == 0 && notModifiedCount > 0 {
		return fmt.Errorf("no new data for game %s: %d providers reported not modified", gameID, notModifiedCount)
	}
	return fmt.Errorf("no provider returned data for game %s: %s", gameID, strings.Join(failures, "; "))
}

// SourceHealth reports the resilience state of one configured source.
type SourceHealth struct {
	Provider  string                  `json:"provider"`
	Breaker   resilience.Stats        `json:"breaker"`
	RateLimit resilience.BucketStatus `json:"rateLimit"`
}

// Health snapshots breaker and limiter state for every configured source,
// in priority order.
func (f *Fetcher) Health() []SourceHealth {
	health := make([]SourceHealth, 0, len(f.sources))
	for _, src := range f.sources {
		h := SourceHealth{Provider: src.Provider.Name()}
		if src.Breaker != nil {
			h.Breaker = src.Breaker.Stats()
		}
		if src.Limiter != nil {
			h.RateLimit = src.Limiter.Status()
		}
		health = append(health, h)
	}
	return health
}
