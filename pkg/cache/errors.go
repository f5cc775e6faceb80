package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork is returned when a remote backend cannot be reached or fails
// mid-request.
var ErrNetwork = errors.New("network error")

// RetryableError marks a failure worth trying again, such as a refused
// connection while Redis is still starting.
type RetryableError struct{ Err error }

// Retryable marks err as retryable. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff is a capped exponential retry schedule.
type Backoff struct {
	Attempts int           // total calls, the first included
	Initial  time.Duration // wait after the first failure
	Max      time.Duration // upper bound for a single wait; 0 means none
}

// DefaultBackoff is used by [RetryWithBackoff]: three attempts, one and then
// two seconds apart.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second, Max: 4 * time.Second}

// Retry calls fn until it succeeds, returns an error not marked retryable,
// or runs out of attempts. The last error is returned. Waiting stops early
// with ctx.Err() when ctx is done.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	wait := b.Initial
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
		if b.Max > 0 && wait > b.Max {
			wait = b.Max
		}
	}
	return err
}

// RetryWithBackoff retries fn on the [DefaultBackoff] schedule.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
