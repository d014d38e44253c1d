// Package retry provides the retry-with-backoff and race-with-timeout
// combinators shared by the assistant pipeline's two nested attempt layers.
package retry

import (
	"context"
	"fmt"
	"time"
)

// BackoffFunc returns the delay to wait after the given number of failed
// attempts. attempt is 1-based: it is called with 1 after the first failure.
type BackoffFunc func(attempt int) time.Duration

// Exponential returns base * 2^attempt.
func Exponential(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base << attempt
	}
}

// Linear returns delay * attempt.
func Linear(delay time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return delay * time.Duration(attempt)
	}
}

// Policy configures one attempt layer.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Timeout bounds each individual attempt. Zero means attempts are bounded
	// only by the caller's context.
	Timeout time.Duration
	// Backoff computes the wait between attempts. Nil means no wait.
	Backoff BackoffFunc
}

type result[T any] struct {
	value T
	err   error
}

// Do runs fn until it succeeds or the policy's attempts are exhausted, in
// which case the last error is returned. Each attempt races fn against the
// per-attempt timeout and the caller's context; whichever settles first wins
// and the loser's result is discarded. The losing attempt's context is
// cancelled, so a well-behaved fn stops instead of running unobserved.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		value, err := runAttempt(ctx, p.Timeout, fn)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt < attempts && p.Backoff != nil {
			if err := wait(ctx, p.Backoff(attempt)); err != nil {
				// The request is gone; one final attempt would fail
				// immediately anyway, so report the attempt error.
				return zero, lastErr
			}
		}
	}

	return zero, lastErr
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	// Buffered so the losing goroutine can always deliver and exit.
	ch := make(chan result[T], 1)
	go func() {
		value, err := fn(attemptCtx)
		ch <- result[T]{value: value, err: err}
	}()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-attemptCtx.Done():
		return zero, fmt.Errorf("attempt abandoned: %w", attemptCtx.Err())
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
