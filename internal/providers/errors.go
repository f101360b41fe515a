package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable marks a provider that cannot currently be called.
var ErrProviderUnavailable = errors.New("provider unavailable")

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// DataShapeError marks a payload that decoded but is missing required
// structure. Counted as that provider's failure only.
type DataShapeError struct {
	Provider string
	Field    string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("%s: malformed payload: missing %s", e.Provider, e.Field)
}

// IsDataShapeError reports whether err is a DataShapeError.
func IsDataShapeError(err error) bool {
	var shapeErr *DataShapeError
	return errors.As(err, &shapeErr)
}
