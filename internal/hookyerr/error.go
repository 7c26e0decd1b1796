// Package hookyerr contains error types that are shared between packages.
package hookyerr

import (
	"fmt"
	"time"
)

// RetryableError wraps an error of an operation that failed temporarily and
// can succeed when it is run again later, e.g. because the GitHub API rate
// limit was exceeded or the API responded with a 5xx status code.
// The operation is not retried by hooky, the error is reported to GitHub,
// which can redeliver the event.
type RetryableError struct {
	// Err is the wrapped original error
	Err error
	// After is the earliest point in time that the operation can be retried.
	// It is the zero value if it is unknown.
	After time.Time
}

func NewRetryableError(originalErr error, retryAfter time.Time) *RetryableError {
	return &RetryableError{
		Err:   originalErr,
		After: retryAfter,
	}
}

func NewRetryableAnytimeError(originalErr error) *RetryableError {
	return &RetryableError{
		Err: originalErr,
	}
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func (e *RetryableError) Error() string {
	if e.After.IsZero() {
		return fmt.Sprintf("retryable error: %s", e.Err)
	}

	return fmt.Sprintf("retryable error (after %s): %s", e.After, e.Err)
}

// RetryAfter returns the duration until the operation can be retried.
// If it is unknown or in the past, 0 is returned.
func (e *RetryableError) RetryAfter() time.Duration {
	if e.After.IsZero() {
		return 0
	}

	if d := time.Until(e.After); d > 0 {
		return d
	}

	return 0
}
