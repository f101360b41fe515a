package leaguefeed

import "time"

const (
	providerName       = "leaguefeed"
	defaultBaseURL     = "https://statsapi.leaguefeed.example.com/api/v1"
	defaultHTTPTimeout = 10 * time.Second
)
