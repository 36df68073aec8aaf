package resilience

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int           // Total invocations including the first (1 = no retries)
	BaseWait    time.Duration // Initial wait duration
	MaxWait     time.Duration // Maximum wait duration
	Multiplier  float64       // Backoff multiplier (e.g., 2.0 for exponential)
	Jitter      float64       // Jitter factor (0.0-1.0)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseWait:    100 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.2,
	}
}

// Sleeper abstracts time-based waiting for deterministic testing.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper uses actual time.
type RealSleeper struct{}

// Sleep waits for the specified duration or until context is cancelled.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Retry executes fn up to cfg.MaxAttempts times, sleeping between
// attempts with exponential backoff. The retryable predicate decides
// whether a failure is worth another attempt; non-retryable failures
// return immediately. The final failure is returned unwrapped so the
// caller can classify and wrap it.
func Retry[T any](
	ctx context.Context,
	cfg RetryConfig,
	sleeper Sleeper,
	retryable func(error) bool,
	fn func() (T, error),
) (T, int, error) {
	var zero T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if sleeper == nil {
		sleeper = RealSleeper{}
	}

	made := 0
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn()
		made = attempt
		if err == nil {
			return result, made, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return zero, made, ctx.Err()
		}

		if retryable != nil && !retryable(err) {
			return zero, made, err
		}

		if attempt >= attempts {
			break
		}

		wait := Backoff(cfg, attempt)
		if err := sleeper.Sleep(ctx, wait); err != nil {
			return zero, made, err
		}
	}

	return zero, made, lastErr
}

// Backoff computes the wait before the attempt following attempt n (1-based),
// capped at MaxWait with jitter applied.
func Backoff(cfg RetryConfig, attempt int) time.Duration {
	wait := float64(cfg.BaseWait)
	for i := 1; i < attempt; i++ {
		wait *= cfg.Multiplier
	}

	if wait > float64(cfg.MaxWait) {
		wait = float64(cfg.MaxWait)
	}

	// Jitter via crypto/rand, same as the rest of the module.
	// rand.Int panics on a non-positive bound, so a zero or negative
	// base wait skips jitter entirely.
	if cfg.Jitter > 0 {
		jitterRange := int64(wait * cfg.Jitter * 2)
		if jitterRange > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(jitterRange))
			if err == nil {
				wait += float64(n.Int64()) - float64(jitterRange)/2
			}
		}
	}

	if wait < 0 {
		return 0
	}
	return time.Duration(wait)
}
