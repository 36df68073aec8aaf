package dependency

import (
	"os"
	"strconv"
	"time"

	"github.com/prilive-com/gatego/internal/validate"
)

// Config holds dependency client configuration.
type Config struct {
	// Admission control
	RPS   float64 // Token refill rate per second
	Burst int     // Bucket capacity

	// Per-attempt timeout
	CallTimeout time.Duration

	// Retry settings
	MaxAttempts   int // Total invocations including the first
	RetryBaseWait time.Duration
	RetryMaxWait  time.Duration
	RetryFactor   float64
	RetryJitter   float64

	// Circuit breaker
	BreakerMaxRequests  uint32 // Trial calls admitted while half-open
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration // Cooldown before half-open
	FailureRatio        float64
	MinRequests         uint32
	ConsecutiveFailures uint32
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RPS:                 50,
		Burst:               25,
		CallTimeout:         2 * time.Second,
		MaxAttempts:         3,
		RetryBaseWait:       100 * time.Millisecond,
		RetryMaxWait:        5 * time.Second,
		RetryFactor:         2.0,
		RetryJitter:         0.2,
		BreakerMaxRequests:  1,
		BreakerInterval:     60 * time.Second,
		BreakerTimeout:      30 * time.Second,
		FailureRatio:        0.5,
		MinRequests:         10,
		ConsecutiveFailures: 5,
	}
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if f, err := strconv.ParseFloat(getEnv("GATEGO_RPS", "50"), 64); err == nil {
		cfg.RPS = f
	}

	if i, err := strconv.Atoi(getEnv("GATEGO_BURST", "25")); err == nil {
		cfg.Burst = i
	}

	if d, err := time.ParseDuration(getEnv("GATEGO_CALL_TIMEOUT", "2s")); err == nil {
		cfg.CallTimeout = d
	}

	if i, err := strconv.Atoi(getEnv("GATEGO_MAX_ATTEMPTS", "3")); err == nil {
		cfg.MaxAttempts = i
	}

	if d, err := time.ParseDuration(getEnv("GATEGO_RETRY_BASE_WAIT", "100ms")); err == nil {
		cfg.RetryBaseWait = d
	}

	if d, err := time.ParseDuration(getEnv("GATEGO_RETRY_MAX_WAIT", "5s")); err == nil {
		cfg.RetryMaxWait = d
	}

	if f, err := strconv.ParseFloat(getEnv("GATEGO_RETRY_FACTOR", "2.0"), 64); err == nil {
		cfg.RetryFactor = f
	}

	if i, err := strconv.ParseUint(getEnv("GATEGO_BREAKER_MAX_REQUESTS", "1"), 10, 32); err == nil {
		cfg.BreakerMaxRequests = uint32(i)
	}

	if d, err := time.ParseDuration(getEnv("GATEGO_BREAKER_INTERVAL", "60s")); err == nil {
		cfg.BreakerInterval = d
	}

	if d, err := time.ParseDuration(getEnv("GATEGO_BREAKER_TIMEOUT", "30s")); err == nil {
		cfg.BreakerTimeout = d
	}

	if f, err := strconv.ParseFloat(getEnv("GATEGO_FAILURE_RATIO", "0.5"), 64); err == nil {
		cfg.FailureRatio = f
	}

	if i, err := strconv.ParseUint(getEnv("GATEGO_MIN_REQUESTS", "10"), 10, 32); err == nil {
		cfg.MinRequests = uint32(i)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := validate.PositiveFloat("rps", c.RPS); err != nil {
		return err
	}
	if err := validate.Positive("burst", c.Burst); err != nil {
		return err
	}
	if err := validate.Positive("max_attempts", c.MaxAttempts); err != nil {
		return err
	}
	if err := validate.Duration("call_timeout", c.CallTimeout); err != nil {
		return err
	}
	if err := validate.Duration("retry_base_wait", c.RetryBaseWait); err != nil {
		return err
	}
	if err := validate.Duration("retry_max_wait", c.RetryMaxWait); err != nil {
		return err
	}
	if c.RetryFactor < 1 {
		return validate.Newf("retry_factor", "must be >= 1, got %g", c.RetryFactor)
	}
	if c.RetryJitter < 0 || c.RetryJitter > 1 {
		return validate.Newf("retry_jitter", "must be in [0, 1], got %g", c.RetryJitter)
	}
	if err := validate.Ratio("failure_ratio", c.FailureRatio); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
