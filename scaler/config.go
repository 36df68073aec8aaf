package scaler

import (
	"os"
	"strconv"
	"time"

	"github.com/prilive-com/gatego/internal/validate"
)

// Config holds autoscaler configuration.
type Config struct {
	// Watermarks are utilization percentages in [0, 100].
	HighWatermark float64 // Scale up above this
	LowWatermark  float64 // Scale down below this

	// Replica bounds
	MinReplicas int
	MaxReplicas int

	// Step is the number of replicas added or removed per action.
	Step int

	// Cooldown suppresses scale actions after an applied decision
	// to prevent flapping.
	Cooldown time.Duration

	// Interval is the evaluation tick period.
	Interval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HighWatermark: 80,
		LowWatermark:  30,
		MinReplicas:   1,
		MaxReplicas:   10,
		Step:          1,
		Cooldown:      60 * time.Second,
		Interval:      15 * time.Second,
	}
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if f, err := strconv.ParseFloat(getEnv("GATEGO_SCALER_HIGH_WATERMARK", "80"), 64); err == nil {
		cfg.HighWatermark = f
	}

	if f, err := strconv.ParseFloat(getEnv("GATEGO_SCALER_LOW_WATERMARK", "30"), 64); err == nil {
		cfg.LowWatermark = f
	}

	if i, err := strconv.Atoi(getEnv("GATEGO_SCALER_MIN_REPLICAS", "1")); err == nil {
		cfg.MinReplicas = i
	}

	if i, err := strconv.Atoi(getEnv("GATEGO_SCALER_MAX_REPLICAS", "10")); err == nil {
		cfg.MaxReplicas = i
	}

	if i, err := strconv.Atoi(getEnv("GATEGO_SCALER_STEP", "1")); err == nil {
		cfg.Step = i
	}

	if d, err := time.ParseDuration(getEnv("GATEGO_SCALER_COOLDOWN", "60s")); err == nil {
		cfg.Cooldown = d
	}

	if d, err := time.ParseDuration(getEnv("GATEGO_SCALER_INTERVAL", "15s")); err == nil {
		cfg.Interval = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := validate.Percent("high_watermark", c.HighWatermark); err != nil {
		return err
	}
	if err := validate.Percent("low_watermark", c.LowWatermark); err != nil {
		return err
	}
	if c.LowWatermark >= c.HighWatermark {
		return validate.Newf("watermarks", "low %g must be below high %g", c.LowWatermark, c.HighWatermark)
	}
	if err := validate.Bounds("replicas", c.MinReplicas, c.MaxReplicas); err != nil {
		return err
	}
	if err := validate.Positive("step", c.Step); err != nil {
		return err
	}
	if err := validate.Duration("interval", c.Interval); err != nil {
		return err
	}
	if c.Cooldown < 0 {
		return validate.Newf("cooldown", "must not be negative, got %s", c.Cooldown)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
