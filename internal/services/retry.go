package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coursework-roadmap/internal/apperrors"
)

// RetryPolicy bounds how often a transient failure is retried
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// withRetry runs fn until it succeeds, fails with a non-retryable error, or
// the attempts run out
func withRetry[T any](ctx context.Context, policy RetryPolicy, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !apperrors.IsRetryable(err) {
			return zero, err
		}

		lastErr = err
		logger.Warn("attempt failed", "op", op, "attempt", attempt, "of", attempts, "error", err)

		if attempt < attempts {
			select {
			case <-time.After(policy.Delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	if attempts == 1 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
