package config

import "time"

const (
	envLeagueFeedBaseURL = "LEAGUEFEED_BASE_URL"
	envLeagueFeedAPIKey  = "LEAGUEFEED_API_KEY"
	envFastLineBaseURL   = "FASTLINE_BASE_URL"
	envFastLineAPIKey    = "FASTLINE_API_KEY"
	envScorePulseBaseURL = "SCOREPULSE_BASE_URL"
	envScorePulseAPIKey  = "SCOREPULSE_API_KEY"

	defaultLeagueFeedBaseURL = "https://statsapi.leaguefeed.example.com/api/v1"
	defaultFastLineBaseURL   = "https://api.fastline.example.com/v2"
	defaultScorePulseBaseURL = "https://feed.scorepulse.example.com/v1"
)

// BreakerProfile sets the circuit breaker thresholds for one provider.
type BreakerProfile struct {
	FailureThreshold int
	ResetTimeout     Duration
	TimeoutThreshold Duration
}

// RateLimitProfile sets the token bucket for one provider.
type RateLimitProfile struct {
	Capacity       int
	RefillInterval Duration
}

// ProviderConfig controls one upstream provider client.
type ProviderConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   Duration
	Breaker   BreakerProfile
	RateLimit RateLimitProfile
}

// ProvidersConfig holds all configured upstream providers.
type ProvidersConfig struct {
	LeagueFeed ProviderConfig
	FastLine   ProviderConfig
	ScorePulse ProviderConfig
}

func loadProviders() ProvidersConfig {
	return ProvidersConfig{
		// Official league source gets a looser breaker: it is the most
		// trustworthy feed and should be retried sooner.
		LeagueFeed: ProviderConfig{
			BaseURL: envOrDefault(envLeagueFeedBaseURL, defaultLeagueFeedBaseURL),
			APIKey:  envOrDefault(envLeagueFeedAPIKey, ""),
			Timeout: 8 * time.Second,
			Breaker: BreakerProfile{
				FailureThreshold: 5,
				ResetTimeout:     30 * time.Second,
				TimeoutThreshold: 8 * time.Second,
			},
			RateLimit: RateLimitProfile{Capacity: 10, RefillInterval: time.Second},
		},
		FastLine: ProviderConfig{
			BaseURL: envOrDefault(envFastLineBaseURL, defaultFastLineBaseURL),
			APIKey:  envOrDefault(envFastLineAPIKey, ""),
			Timeout: 5 * time.Second,
			Breaker: BreakerProfile{
				FailureThreshold: 3,
				ResetTimeout:     60 * time.Second,
				TimeoutThreshold: 5 * time.Second,
			},
			RateLimit: RateLimitProfile{Capacity: 5, RefillInterval: time.Second},
		},
		ScorePulse: ProviderConfig{
			BaseURL: envOrDefault(envScorePulseBaseURL, defaultScorePulseBaseURL),
			APIKey:  envOrDefault(envScorePulseAPIKey, ""),
			Timeout: 5 * time.Second,
			Breaker: BreakerProfile{
				FailureThreshold: 3,
				ResetTimeout:     60 * time.Second,
				TimeoutThreshold: 5 * time.Second,
			},
			RateLimit: RateLimitProfile{Capacity: 5, RefillInterval: time.Second},
		},
	}
}
