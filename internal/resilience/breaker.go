package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds circuit breaker configuration.
// MaxRequests of 1 admits exactly one trial call while half-open;
// concurrent callers are short-circuited until the trial resolves.
type BreakerConfig struct {
	Name          string
	MaxRequests   uint32        // Max trial requests in half-open state
	Interval      time.Duration // Counting interval for failures
	Timeout       time.Duration // Cooldown before half-open
	FailureRatio  float64       // Ratio threshold (0.5 = 50%)
	MinRequests   uint32        // Minimum requests before checking ratio
	Consecutive   uint32        // Consecutive failures that trip regardless of ratio (0 = disabled)
	IsSuccessful  func(err error) bool
	OnStateChange func(name string, from, to string)
}

// NewBreaker creates a new circuit breaker with the given configuration.
func NewBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.Consecutive > 0 && counts.ConsecutiveFailures >= cfg.Consecutive {
				return true
			}
			if counts.Requests >= cfg.MinRequests {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio >= cfg.FailureRatio
			}
			return false
		},
	}

	if cfg.IsSuccessful != nil {
		settings.IsSuccessful = cfg.IsSuccessful
	}

	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, from.String(), to.String())
		}
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}

// IsOpen returns true if the circuit breaker is in the open state.
func IsOpen[T any](cb *gobreaker.CircuitBreaker[T]) bool {
	return cb.State() == gobreaker.StateOpen
}

// Counts returns the current counts from the circuit breaker.
func Counts[T any](cb *gobreaker.CircuitBreaker[T]) gobreaker.Counts {
	return cb.Counts()
}
