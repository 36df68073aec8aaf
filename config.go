package gatego

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prilive-com/gatego/dependency"
	"github.com/prilive-com/gatego/scaler"
)

// Duration wraps time.Duration so YAML files can use "500ms" style
// values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("gatego: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// FileConfig is the YAML representation of gateway settings. Zero
// values fall back to the package defaults, so partial files are fine.
type FileConfig struct {
	Service string `yaml:"service"`

	Dependency struct {
		RPS                 float64  `yaml:"rps"`
		Burst               int      `yaml:"burst"`
		CallTimeout         Duration `yaml:"call_timeout"`
		MaxAttempts         int      `yaml:"max_attempts"`
		RetryBaseWait       Duration `yaml:"retry_base_wait"`
		RetryMaxWait        Duration `yaml:"retry_max_wait"`
		RetryFactor         float64  `yaml:"retry_factor"`
		RetryJitter         float64  `yaml:"retry_jitter"`
		BreakerInterval     Duration `yaml:"breaker_interval"`
		BreakerTimeout      Duration `yaml:"breaker_timeout"`
		FailureRatio        float64  `yaml:"failure_ratio"`
		MinRequests         uint32   `yaml:"min_requests"`
		ConsecutiveFailures uint32   `yaml:"consecutive_failures"`
	} `yaml:"dependency"`

	Scaler struct {
		HighWatermark float64  `yaml:"high_watermark"`
		LowWatermark  float64  `yaml:"low_watermark"`
		MinReplicas   int      `yaml:"min_replicas"`
		MaxReplicas   int      `yaml:"max_replicas"`
		Step          int      `yaml:"step"`
		Cooldown      Duration `yaml:"cooldown"`
		Interval      Duration `yaml:"interval"`
	} `yaml:"scaler"`

	SyncInterval Duration `yaml:"sync_interval"`
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gatego: read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("gatego: parse config: %w", err)
	}
	return &cfg, nil
}

// DependencyConfig converts the file settings to a dependency.Config,
// keeping defaults for fields the file leaves unset.
func (c *FileConfig) DependencyConfig() dependency.Config {
	out := dependency.DefaultConfig()
	d := c.Dependency

	if d.RPS > 0 {
		out.RPS = d.RPS
	}
	if d.Burst > 0 {
		out.Burst = d.Burst
	}
	if d.CallTimeout > 0 {
		out.CallTimeout = time.Duration(d.CallTimeout)
	}
	if d.MaxAttempts > 0 {
		out.MaxAttempts = d.MaxAttempts
	}
	if d.RetryBaseWait > 0 {
		out.RetryBaseWait = time.Duration(d.RetryBaseWait)
	}
	if d.RetryMaxWait > 0 {
		out.RetryMaxWait = time.Duration(d.RetryMaxWait)
	}
	if d.RetryFactor > 0 {
		out.RetryFactor = d.RetryFactor
	}
	if d.RetryJitter > 0 {
		out.RetryJitter = d.RetryJitter
	}
	if d.BreakerInterval > 0 {
		out.BreakerInterval = time.Duration(d.BreakerInterval)
	}
	if d.BreakerTimeout > 0 {
		out.BreakerTimeout = time.Duration(d.BreakerTimeout)
	}
	if d.FailureRatio > 0 {
		out.FailureRatio = d.FailureRatio
	}
	if d.MinRequests > 0 {
		out.MinRequests = d.MinRequests
	}
	if d.ConsecutiveFailures > 0 {
		out.ConsecutiveFailures = d.ConsecutiveFailures
	}
	return out
}

// ScalerConfig converts the file settings to a scaler.Config.
func (c *FileConfig) ScalerConfig() scaler.Config {
	out := scaler.DefaultConfig()
	s := c.Scaler

	if s.HighWatermark > 0 {
		out.HighWatermark = s.HighWatermark
	}
	if s.LowWatermark > 0 {
		out.LowWatermark = s.LowWatermark
	}
	if s.MinReplicas > 0 {
		out.MinReplicas = s.MinReplicas
	}
	if s.MaxReplicas > 0 {
		out.MaxReplicas = s.MaxReplicas
	}
	if s.Step > 0 {
		out.Step = s.Step
	}
	if s.Cooldown > 0 {
		out.Cooldown = time.Duration(s.Cooldown)
	}
	if s.Interval > 0 {
		out.Interval = time.Duration(s.Interval)
	}
	return out
}

// Options expands the file configuration into gateway options.
func (c *FileConfig) Options() []Option {
	opts := []Option{
		WithDependencyDefaults(c.DependencyConfig()),
		WithScalerConfig(c.ScalerConfig()),
	}
	if c.SyncInterval > 0 {
		opts = append(opts, WithSyncInterval(time.Duration(c.SyncInterval)))
	}
	return opts
}
