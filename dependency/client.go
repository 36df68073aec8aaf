package dependency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/prilive-com/gatego/gate"
	"github.com/prilive-com/gatego/internal/metrics"
	"github.com/prilive-com/gatego/internal/resilience"
	"github.com/prilive-com/gatego/internal/validate"
)

// CallFunc is a single dependency invocation bounded by ctx.
type CallFunc func(ctx context.Context) error

// Fallback produces a substitute outcome when admission control or the
// circuit breaker rejects a call. cause is gate.ErrRateLimited or
// gate.ErrCircuitOpen.
type Fallback func(ctx context.Context, cause error) (any, error)

// Client guards calls to one downstream dependency. The call path is
// fixed: admission gate, then the retry loop, where every attempt is
// timeout-bounded and breaker-guarded. Clients are safe for concurrent
// use; each caller's backoff suspends only its own call.
type Client struct {
	name     string
	config   Config
	logger   *slog.Logger
	limiter  *resilience.Limiter
	breaker  *gobreaker.CircuitBreaker[any]
	sleeper  resilience.Sleeper
	fallback Fallback
	onResult func(gate.CallResult)
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSleeper sets a custom sleeper for retry timing (useful for testing).
func WithSleeper(s resilience.Sleeper) Option {
	return func(c *Client) {
		c.sleeper = s
	}
}

// WithFallback sets the fallback invoked when a call is rejected by the
// rate limiter or the open circuit.
func WithFallback(fb Fallback) Option {
	return func(c *Client) {
		c.fallback = fb
	}
}

// WithRateLimit sets admission-control parameters.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.config.RPS = rps
		c.config.Burst = burst
	}
}

// WithLimiter supplies an externally owned admission limiter, letting
// several call sites share one bucket. The configured RPS and Burst
// are applied to it.
func WithLimiter(l *resilience.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.config.CallTimeout = d
	}
}

// WithRetries sets the total number of attempts (1 = no retries).
func WithRetries(maxAttempts int) Option {
	return func(c *Client) {
		c.config.MaxAttempts = maxAttempts
	}
}

// WithBreakerSettings overrides circuit breaker parameters.
func WithBreakerSettings(maxRequests uint32, interval, timeout time.Duration, failureRatio float64, minRequests uint32) Option {
	return func(c *Client) {
		c.config.BreakerMaxRequests = maxRequests
		c.config.BreakerInterval = interval
		c.config.BreakerTimeout = timeout
		c.config.FailureRatio = failureRatio
		c.config.MinRequests = minRequests
	}
}

// WithResultHook registers an observer invoked with every attempt outcome.
func WithResultHook(hook func(gate.CallResult)) Option {
	return func(c *Client) {
		c.onResult = hook
	}
}

// New creates a Client for the named dependency.
func New(name string, opts ...Option) (*Client, error) {
	return NewFromConfig(name, DefaultConfig(), opts...)
}

// NewFromConfig creates a Client from cfg.
func NewFromConfig(name string, cfg Config, opts ...Option) (*Client, error) {
	if err := validate.Name("dependency", name); err != nil {
		return nil, fmt.Errorf("%w: %w", gate.ErrInvalidConfig, err)
	}

	c := &Client{
		name:   name,
		config: cfg,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", gate.ErrInvalidConfig, err)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.sleeper == nil {
		c.sleeper = resilience.RealSleeper{}
	}

	if c.limiter == nil {
		c.limiter = resilience.NewLimiter(resilience.LimiterConfig{
			RPS:   c.config.RPS,
			Burst: c.config.Burst,
		})
	} else {
		c.limiter.SetLimit(c.config.RPS, c.config.Burst)
	}

	c.breaker = resilience.NewBreaker[any](resilience.BreakerConfig{
		Name:         name,
		MaxRequests:  c.config.BreakerMaxRequests,
		Interval:     c.config.BreakerInterval,
		Timeout:      c.config.BreakerTimeout,
		FailureRatio: c.config.FailureRatio,
		MinRequests:  c.config.MinRequests,
		Consecutive:  c.config.ConsecutiveFailures,
		IsSuccessful: c.isBreakerSuccess,
		OnStateChange: func(name, from, to string) {
			metrics.SetBreakerState(name, to)
			c.logger.Info("circuit breaker state changed",
				"dependency", name,
				"from", from,
				"to", to,
			)
		},
	})

	return c, nil
}

// Name returns the dependency name.
func (c *Client) Name() string {
	return c.name
}

// BreakerState returns the current circuit state as a string.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Open reports whether the circuit is currently open, for health
// reporting.
func (c *Client) Open() bool {
	return resilience.IsOpen(c.breaker)
}

// BreakerCounts returns the breaker's rolling counts.
func (c *Client) BreakerCounts() gobreaker.Counts {
	return resilience.Counts(c.breaker)
}

// Tokens returns the admission bucket's current token count.
func (c *Client) Tokens() float64 {
	return c.limiter.Tokens()
}

// Call runs fn through the full protection chain.
func (c *Client) Call(ctx context.Context, fn CallFunc) error {
	_, err := c.do(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// Invoke runs fn through c's protection chain and returns its typed
// result. When a fallback substitutes the outcome, its result must be
// assignable to T.
func Invoke[T any](c *Client, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	out, err := c.do(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}

	result, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("gatego: %s: fallback result %T is not %T", c.name, out, zero)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	start := time.Now()

	if !c.limiter.Acquire() {
		metrics.RecordCall(c.name, "rate_limited", time.Since(start))
		return c.reject(ctx, gate.ErrRateLimited)
	}

	result, attempts, err := resilience.Retry(ctx, c.retryConfig(), c.sleeper, c.retryable, func() (any, error) {
		return c.attempt(ctx, fn)
	})
	if attempts > 1 {
		metrics.RetriesTotal.WithLabelValues(c.name).Add(float64(attempts - 1))
	}

	elapsed := time.Since(start)

	if err == nil {
		metrics.RecordCall(c.name, "success", elapsed)
		return result, nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		metrics.RecordCall(c.name, "cancelled", elapsed)
		return nil, err
	}

	if isOpenCircuit(err) {
		metrics.RecordCall(c.name, "circuit_open", elapsed)
		return c.reject(ctx, gate.ErrCircuitOpen)
	}

	kind := gate.KindOf(err)
	if kind.Retryable() && attempts >= c.config.MaxAttempts {
		metrics.RecordCall(c.name, "retry_exhausted", elapsed)
		c.logger.Warn("retries exhausted",
			"dependency", c.name,
			"attempts", attempts,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", gate.ErrRetryExhausted, err)
	}

	metrics.RecordCall(c.name, kind.String(), elapsed)
	return nil, err
}

// attempt is one timeout-bounded, breaker-guarded invocation.
func (c *Client) attempt(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	start := time.Now()

	out, err := c.breaker.Execute(func() (any, error) {
		res, err := resilience.WithTimeout(ctx, c.config.CallTimeout, fn)
		if errors.Is(err, resilience.ErrTimedOut) {
			return nil, gate.NewCallError(c.name, gate.ErrorKindTimeout, nil)
		}
		return res, err
	})

	// Short-circuited calls never reached the dependency; only real
	// attempts feed the result hook.
	if !isOpenCircuit(err) && c.onResult != nil {
		c.onResult(gate.CallResult{
			Success:   err == nil,
			Latency:   time.Since(start),
			ErrorKind: gate.KindOf(err),
		})
	}

	return out, err
}

// reject resolves a locally rejected call: the fallback substitutes the
// outcome when configured, otherwise the cause surfaces to the caller.
func (c *Client) reject(ctx context.Context, cause error) (any, error) {
	if c.fallback == nil {
		return nil, gate.NewCallError(c.name, gate.KindOf(cause), cause)
	}

	metrics.FallbacksTotal.WithLabelValues(c.name).Inc()
	c.logger.Debug("fallback invoked",
		"dependency", c.name,
		"cause", cause,
	)
	return c.fallback(ctx, cause)
}

func (c *Client) retryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: c.config.MaxAttempts,
		BaseWait:    c.config.RetryBaseWait,
		MaxWait:     c.config.RetryMaxWait,
		Multiplier:  c.config.RetryFactor,
		Jitter:      c.config.RetryJitter,
	}
}

// retryable decides whether a failed attempt is worth repeating.
// Open-circuit rejections stop the loop immediately so the fallback
// path resolves without useless waits.
func (c *Client) retryable(err error) bool {
	if isOpenCircuit(err) {
		return false
	}
	return gate.KindOf(err).Retryable()
}

// isBreakerSuccess classifies errors for breaker accounting. Caller
// mistakes (malformed requests, rate pressure) and caller-side
// cancellation say nothing about the dependency's health; timeouts and
// server failures do.
func (c *Client) isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return !gate.KindOf(err).Retryable()
}

func isOpenCircuit(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
