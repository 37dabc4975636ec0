package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks a remote backend that could not be reached.
var ErrNetwork = errors.New("network error")

// RetryableError marks a failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err so that [Backoff.Retry] tries again. nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries an operation with exponentially growing delays.
type Backoff struct {
	Attempts int
	Initial  time.Duration
}

// DefaultBackoff is used when connecting to Redis: three attempts, one
// second apart at first.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second}

// Retry calls fn until it succeeds, fails with an error not marked
// retryable, or the attempts run out. The last error is returned.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Initial
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}
