// Package retry provides the shared retry-with-backoff policy used for all
// graph store, vector store, and collaborator calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy configures bounded retry with exponential backoff. Each attempt runs
// under its own timeout; a timeout counts as a retryable failure.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (default: 3)
	MaxAttempts int
	// InitialDelay is the delay before the first retry (default: 200ms)
	InitialDelay time.Duration
	// MaxDelay is the maximum delay between retries (default: 2s)
	MaxDelay time.Duration
	// AttemptTimeout bounds each individual attempt (default: 10s)
	AttemptTimeout time.Duration
}

// DefaultPolicy returns sensible defaults for absorbing transient store faults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		AttemptTimeout: 10 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as non-retryable. NotFound and validation
// failures are returned to the caller immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Do runs op under the policy, retrying retryable failures with exponential
// backoff until the attempt budget is exhausted or the context is cancelled.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		lastErr = op(attemptCtx)
		if cancel != nil {
			cancel()
		}

		if lastErr == nil {
			return nil
		}
		var pe *permanentError
		if errors.As(lastErr, &pe) {
			return pe.err
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(calculateBackoff(attempt, p.InitialDelay, p.MaxDelay)):
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, lastErr)
}

// calculateBackoff returns the delay before the given retry, doubling each
// attempt and capped at maxDelay.
func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	delay := initialDelay * time.Duration(1<<(attempt-1))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
