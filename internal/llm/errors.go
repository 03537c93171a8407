package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyCompletion is returned when the provider answers without any content.
	ErrEmptyCompletion = errors.New("completion has no content")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("summarization provider unavailable")
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the same request may succeed later: rate limits
// and server-side failures are, other client errors are not.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable reports whether err is worth another attempt. Errors tied to
// the input itself, such as a rejected request or an empty completion, are not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrEmptyCompletion) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}
