package cache

import (
	"context"
	"fmt"
	"time"
)

// RetryableError marks a backend failure worth retrying, such as a lost
// Redis connection.
type RetryableError struct {
	Err error
}

// Error implements the error interface.
func (e *RetryableError) Error() string { return fmt.Sprintf("retryable: %v", e.Err) }

// Unwrap returns the underlying error.
func (e *RetryableError) Unwrap() error { return e.Err }

// RetryWithBackoff runs fn up to attempts times, doubling the delay after
// each failure. It stops early when the context is cancelled or fn returns
// a non-retryable error.
func RetryWithBackoff(ctx context.Context, attempts int, initialDelay time.Duration, fn func() error) error {
	delay := initialDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if _, ok := err.(*RetryableError); !ok {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
