package driven

import (
	"fmt"
	"net/http"
	"time"
)

// RemoteError is returned by HTTP adapters when a provider answers with a
// non-success status. Callers use it to decide whether a retry makes sense.
type RemoteError struct {
	Provider   string
	StatusCode int
	Message    string

	// RetryAfter is the delay requested by the provider, zero if none.
	RetryAfter time.Duration
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// RateLimited reports whether the provider rejected the call for exceeding a quota.
func (e *RemoteError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Retryable reports whether repeating the same call may succeed.
func (e *RemoteError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
