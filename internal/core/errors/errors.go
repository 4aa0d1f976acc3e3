package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Upstream user source
	ErrUpstreamUnavailable = errors.New("user source unavailable")
	ErrUpstreamStatus      = errors.New("user source returned an unexpected status")
	ErrUpstreamDecode      = errors.New("user source returned an undecodable body")
	ErrNoUsersReturned     = errors.New("user source returned no users")

	// Sessions
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionRequired = errors.New("session ID is required")

	// Generic
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// UpstreamError marks err as a failure of the external user source. The
// returned error matches both ErrUpstreamUnavailable and err.
func UpstreamError(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

// NewRateLimitError is returned to clients that exceed their request budget
func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

