package leaguefeed

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

// Config controls how the leaguefeed client reaches the upstream API.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches live game feeds from the official league API and maps them
// to canonical GameData.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	now        func() time.Time
}

// NewClient constructs a leaguefeed client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		now:        time.Now,
	}
}

// Name identifies this provider in logs, metrics, and evidence.
func (c *Client) Name() string {
	return providerName
}

// FetchGame retrieves the live feed for one game.
func (c *Client) FetchGame(ctx context.Context, gameID string, cond providers.Conditional) (providers.Outcome, error) {
	req, err := c.buildRequest(ctx, gameID, cond)
	if err != nil {
		return providers.Outcome{}, err
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
		return providers.Outcome{}, &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return providers.Outcome{}, fmt.Errorf("leaguefeed: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.Outcome{}, err
	}

	var payload feedResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return providers.Outcome{}, err
	}

	data, err := mapGame(gameID, payload, c.now())
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

func (c *Client) buildRequest(ctx context.Context, gameID string, cond providers.Conditional) (*http.Request, error) {
	url := fmt.Sprintf("%s/games/%s/feed", c.baseURL, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if cond.ETag != "" {
		req.Header.Set("If-None-Match", cond.ETag)
	}
	if cond.LastModified != "" {
		req.Header.Set("If-Modified-Since", cond.LastModified)
	}

	return req, nil
}

func resolveHTTPClient(client *http.Client) httpDoer {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		raw = defaultBaseURL
	}
	return strings.TrimSuffix(raw, "/")
}

func parseRetryAfter(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
