package server

import (
	"net/http"
	"time"

	"game-trigger-service/internal/config"
	"game-trigger-service/internal/fetch"
	"game-trigger-service/internal/providers"
	"game-trigger-service/internal/providers/fastline"
	"game-trigger-service/internal/providers/leaguefeed"
	"game-trigger-service/internal/providers/scorepulse"
	"game-trigger-service/internal/resilience"
)

// buildSources assembles the configured providers with their breakers and
// token buckets. Order is priority order: the official feed first, then the
// secondary vendors.
func buildSources(cfg config.ProvidersConfig) []fetch.Source {
	return []fetch.Source{
		guarded("leaguefeed", cfg.LeagueFeed, leaguefeed.NewClient(leaguefeed.Config{
			BaseURL:    cfg.LeagueFeed.BaseURL,
			APIKey:     cfg.LeagueFeed.APIKey,
			HTTPClient: httpClient(cfg.LeagueFeed.Timeout),
		})),
		guarded("fastline", cfg.FastLine, fastline.NewClient(fastline.Config{
			BaseURL:    cfg.FastLine.BaseURL,
			APIKey:     cfg.FastLine.APIKey,
			HTTPClient: httpClient(cfg.FastLine.Timeout),
		})),
		guarded("scorepulse", cfg.ScorePulse, scorepulse.NewClient(scorepulse.Config{
			BaseURL:    cfg.ScorePulse.BaseURL,
			APIKey:     cfg.ScorePulse.APIKey,
			HTTPClient: httpClient(cfg.ScorePulse.Timeout),
		})),
	}
}

func guarded(name string, cfg config.ProviderConfig, provider providers.GameProvider) fetch.Source {
	return fetch.Source{
		Provider: provider,
		Breaker: resilience.NewBreaker(name, resilience.Settings{
			FailureThreshold: cfg.Breaker.FailureThreshold,
			ResetTimeout:     cfg.Breaker.ResetTimeout,
			TimeoutThreshold: cfg.Breaker.TimeoutThreshold,
		}),
		Limiter: resilience.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillInterval),
	}
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
