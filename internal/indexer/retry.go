package indexer

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/sense/internal/embedding"
)

// RetryConfig configures exponential backoff around provider calls.
type RetryConfig struct {
	MaxRetries int           // total attempts, at least 1
	BaseDelay  time.Duration // delay before the second attempt
	MaxDelay   time.Duration // cap on any backoff delay; Retry-After may exceed it
	Multiplier float64       // growth factor between delays
}

// DefaultRetryConfig returns 3 attempts starting at 200ms, capped at 5s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
	}
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	return !errors.Is(err, embedding.ErrUnauthorized) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// retryWithBackoff runs fn until it succeeds, fails permanently, or runs out of attempts.
// A rate-limit error carrying Retry-After waits at least that long, even beyond MaxDelay.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	attempts := config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	backoff := config.BaseDelay

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !retryable(err) || attempt == attempts-1 {
			break
		}

		wait := backoff
		if config.MaxDelay > 0 && wait > config.MaxDelay {
			wait = config.MaxDelay
		}
		// Retry-After is honored even past MaxDelay.
		var rl *embedding.RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > wait {
			wait = rl.RetryAfter
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		backoff = time.Duration(float64(backoff) * config.Multiplier)
		if config.MaxDelay > 0 && backoff > config.MaxDelay {
			backoff = config.MaxDelay
		}
	}
	return zero, lastErr
}
