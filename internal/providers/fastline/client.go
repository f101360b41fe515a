package fastline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"game-trigger-service/internal/providers"
)

const (
	defaultBaseURL     = "https://api.fastline.example.com/v2"
	defaultHTTPTimeout = 6 * time.Second
)

// Config controls how the fastline client reaches the upstream API.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches scoreboard events from the fastline stats vendor.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	now        func() time.Time
}

// NewClient constructs a fastline client with the provided configuration.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	doer := httpDoer(cfg.HTTPClient)
	if cfg.HTTPClient == nil {
		doer = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(base, "/"),
		apiKey:     cfg.APIKey,
		httpClient: doer,
		now:        time.Now,
	}
}

// Name identifies this provider in logs, metrics, and evidence.
func (c *Client) Name() string {
	return providerName
}

// FetchGame retrieves one scoreboard event and normalizes it.
func (c *Client) FetchGame(ctx context.Context, gameID string, cond providers.Conditional) (providers.Outcome, error) {
	url := fmt.Sprintf("%s/scoreboard/events/%s", c.baseURL, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return providers.Outcome{}, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if cond.ETag != "" {
		req.Header.Set("If-None-Match", cond.ETag)
	}
	if cond.LastModified != "" {
		req.Header.Set("If-Modified-Since", cond.LastModified)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return providers.Outcome{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return providers.Outcome{NotModified: true}, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := time.Duration(0)
		if secs, parseErr := strconv.Atoi(resp.Header.Get("Retry-After")); parseErr == nil && secs > 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
		return providers.Outcome{}, &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter,
		}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return providers.Outcome{}, fmt.Errorf("fastline: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.Outcome{}, err
	}

	var payload eventResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return providers.Outcome{}, err
	}

	data, err := mapEvent(gameID, payload, c.now())
	if err != nil {
		return providers.Outcome{}, err
	}

	return providers.Outcome{
		Data:         data,
		Raw:          raw,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
