package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// Config controls retry behavior for one upstream.
type Config struct {
	// MaxAttempts is the total number of attempts including the first.
	// Default: 3.
	MaxAttempts int

	// BackoffUnit scales the backoff schedule; the delay before retrying
	// after attempt n (zero-based) is (2^n + n/2) units. Default: 1s.
	// Tests shrink it to keep runs fast.
	BackoffUnit time.Duration

	// OnRetry is called with the attempt just failed (1-based) and its
	// error, before the backoff sleep.
	OnRetry func(attempt int, err error)
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffUnit <= 0 {
		c.BackoffUnit = time.Second
	}
	return c
}

// Backoff returns the delay after the given zero-based failed attempt.
// The schedule grows exponentially with a small linear term so that
// consecutive delays never coincide: 1, 2.5, 5, 9.5 units.
func (c Config) Backoff(attempt int) time.Duration {
	c = c.withDefaults()
	units := math.Pow(2, float64(attempt)) + 0.5*float64(attempt)
	return time.Duration(units * float64(c.BackoffUnit))
}

// Call invokes fn until it succeeds, a fatal category comes back, or
// attempts run out. Every returned error is a *CallError; cancellation
// stops retries immediately.
func Call[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr *CallError
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = AsCallError(err)

		if ctx.Err() != nil {
			return zero, NewCallError(CategoryTimeout, ctx.Err())
		}
		if !lastErr.Retryable() {
			return zero, lastErr
		}
		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(cfg.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, NewCallError(CategoryTimeout, ctx.Err())
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// RetryLogger returns an OnRetry callback that logs each retry.
func RetryLogger(operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
