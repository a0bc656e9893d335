package embedder

import (
	"context"
	"time"
)

// RetryConfig bounds retry behavior for embedding calls.
type RetryConfig struct {
	MaxAttempts int           // Total attempts including the first
	BaseDelay   time.Duration // Delay after the first failure
	MaxDelay    time.Duration // Ceiling for the backoff delay
	Multiplier  float64       // Backoff growth factor
}

// DefaultRetryConfig returns the default budget of 3 attempts with
// exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultRetryBudget,
		BaseDelay:   time.Duration(initialBackoffMs) * time.Millisecond,
		MaxDelay:    time.Duration(maxBackoffMs) * time.Millisecond,
		Multiplier:  backoffMultiplier,
	}
}

// withBudget returns a copy of the config with the attempt budget replaced.
// Non-positive budgets keep the default.
func (c RetryConfig) withBudget(attempts int) RetryConfig {
	if attempts > 0 {
		c.MaxAttempts = attempts
	}
	return c
}

// retryWithBackoff executes fn up to the configured attempt budget with
// exponential backoff between failures. Context cancellation stops the loop
// immediately and is never retried.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	backoff := config.BaseDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * config.Multiplier)
				if backoff > config.MaxDelay {
					backoff = config.MaxDelay
				}
			}
		}
	}

	return zero, lastErr
}
