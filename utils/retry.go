package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
//
// The wait before attempt n+1 is BaseDelay*n (or BaseDelay*2^(n-1) when
// Exponential is set) plus a random jitter in [0, Jitter).
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
	Exponential bool
	Logger      *Logger
}

// Backoff returns the wait after the given failed attempt (1-based), without jitter.
func (r *RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.Exponential {
		return r.BaseDelay << (attempt - 1)
	}
	return r.BaseDelay * time.Duration(attempt)
}

// Do executes fn until it succeeds, MaxAttempts is reached or ctx is done.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func(ctx context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt < attempts {
			delay := r.Backoff(attempt) + RandomDuration(0, r.Jitter)
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
					operationName, attempt, attempts, lastErr, delay.Round(time.Millisecond))
			}
			if err := Sleep(ctx, delay); err != nil {
				return fmt.Errorf("%s aborted after %d attempts: %w", operationName, attempt, err)
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}
