package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss reports that a key is absent or its entry is unusable.
	ErrCacheMiss = errors.New("cache miss")

	// ErrBackend reports that a remote cache could not be reached.
	ErrBackend = errors.New("cache backend unavailable")
)

// RetryableError marks a failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff is an exponential retry policy. Zero fields take the values of
// DefaultBackoff.
type Backoff struct {
	Attempts int           // total tries, including the first
	Delay    time.Duration // wait before the second try
	MaxDelay time.Duration // cap on a single wait
}

// DefaultBackoff keeps a cache lookup well under a second of retrying, since
// a slow cache only costs a redraw.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 50 * time.Millisecond, MaxDelay: 400 * time.Millisecond}

func (b Backoff) withDefaults() Backoff {
	if b.Attempts <= 0 {
		b.Attempts = DefaultBackoff.Attempts
	}
	if b.Delay <= 0 {
		b.Delay = DefaultBackoff.Delay
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = DefaultBackoff.MaxDelay
	}
	return b
}

// Retry calls fn until it succeeds, returns an error that is not
// retryable, the attempts run out, or ctx is done.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	b = b.withDefaults()
	delay := b.Delay
	var err error
	for i := 0; i < b.Attempts; i++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == b.Attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, b.MaxDelay)
	}
	return err
}

// RetryWithBackoff retries fn with DefaultBackoff.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
