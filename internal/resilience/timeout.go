package resilience

import (
	"context"
	"time"
)

// ErrTimedOut is returned by WithTimeout when fn does not complete in time.
// Callers map it to their own error taxonomy.
type timeoutError struct{}

func (timeoutError) Error() string { return "resilience: deadline exceeded" }
func (timeoutError) Timeout() bool { return true }

// ErrTimedOut is the sentinel returned when a bounded call expires.
var ErrTimedOut error = timeoutError{}

// WithTimeout runs fn with a context bounded by d and abandons the call
// if it has not completed in time. Only the attempt's own context is
// cancelled; concurrent calls are unaffected. The goroutine running fn
// is left to observe its context and unwind on its own.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if d <= 0 {
		return fn(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		result T
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		result, err := fn(callCtx)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			// Caller's own context ended, not the per-attempt deadline.
			return zero, ctx.Err()
		}
		return zero, ErrTimedOut
	}
}
