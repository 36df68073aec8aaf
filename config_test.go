package gatego

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gatego.yaml")
	data := `
service: checkout
dependency:
  rps: 100
  burst: 50
  call_timeout: 500ms
  max_attempts: 5
scaler:
  high_watermark: 90
  low_watermark: 20
  max_replicas: 20
sync_interval: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "checkout", cfg.Service)

	dep := cfg.DependencyConfig()
	assert.Equal(t, 100.0, dep.RPS)
	assert.Equal(t, 50, dep.Burst)
	assert.Equal(t, 500*time.Millisecond, dep.CallTimeout)
	assert.Equal(t, 5, dep.MaxAttempts)
	// Unset fields keep defaults
	assert.Equal(t, 100*time.Millisecond, dep.RetryBaseWait)

	sc := cfg.ScalerConfig()
	assert.Equal(t, 90.0, sc.HighWatermark)
	assert.Equal(t, 20.0, sc.LowWatermark)
	assert.Equal(t, 20, sc.MaxReplicas)
	assert.Equal(t, 1, sc.MinReplicas)

	assert.Equal(t, 30*time.Second, time.Duration(cfg.SyncInterval))
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service: [unclosed"), 0o600))

	_, err := LoadConfigFile(path)
	assert.Error(t, err)
}

func TestFileConfig_Options(t *testing.T) {
	var cfg FileConfig
	cfg.SyncInterval = Duration(time.Minute)

	opts := cfg.Options()
	assert.Len(t, opts, 3)
}
