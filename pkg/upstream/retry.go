package upstream

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Operation is one attemptable unit of upstream work.
type Operation func(ctx context.Context) (*Result, error)

// backoffSleep waits for d or until ctx is done. A package variable so
// tests can observe the backoff schedule without real waiting.
var backoffSleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// WithRetry runs op up to cfg.MaxAttempts times with pure exponential
// backoff between attempts: the wait before attempt n+1 is
// InitialDelay * 2^(n-1), so observed delays are d, 2d, 4d, and so on.
// No jitter is applied.
//
// Non-retryable failures (401, 403, 404, missing credential, malformed
// request) return immediately on first occurrence. When attempts are
// exhausted, the last failure is returned wrapped in a RetryError
// carrying the attempt count. Cancelling ctx aborts the wait and
// returns the attempts spent so far with the last failure.
//
// Each retry sequence is independent; nothing is shared between
// concurrent sequences beyond the Carrier's credential snapshot.
func WithRetry(ctx context.Context, op Operation, cfg RetryConfig) (*Result, error) {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if cfg.OnRetry != nil {
				cfg.OnRetry(Kind(lastErr))
			}
			delay := time.Duration(math.Pow(2, float64(attempt-2))) * cfg.InitialDelay
			slog.Debug("retrying upstream request",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"backoff", delay,
			)
			if err := backoffSleep(ctx, delay); err != nil {
				return nil, &RetryError{Attempts: attempt - 1, Cause: lastErr}
			}
		}

		result, err := op(ctx)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}

		slog.Debug("upstream request failed",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"kind", Kind(err),
		)
	}

	return nil, &RetryError{Attempts: maxAttempts, Cause: lastErr}
}
