package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs so
// no real config file leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()
	t.Chdir(work)
	return work
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	assert.False(t, cfg.Output.Flat)
	assert.True(t, cfg.Output.JSONMetadata)
	assert.Equal(t, DefaultWorkers, cfg.Concurrency.Workers)
	assert.Equal(t, DefaultTimeout, cfg.Concurrency.Timeout)
	assert.Equal(t, DefaultMaxDepth, cfg.Concurrency.MaxDepth)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
	assert.Equal(t, DefaultMaxRetries, cfg.GitHub.MaxRetries)
	assert.True(t, cfg.Extract.Enabled)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	work := isolate(t)

	yaml := `output:
  directory: /tmp/out
  flat: true
concurrency:
  workers: 12
  max_depth: 40
github:
  max_retries: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(work, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.Output.Directory)
	assert.True(t, cfg.Output.Flat)
	assert.Equal(t, 12, cfg.Concurrency.Workers)
	assert.Equal(t, 40, cfg.Concurrency.MaxDepth)
	assert.Equal(t, 1, cfg.GitHub.MaxRetries)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("REPOLENS_CONCURRENCY_WORKERS", "9")
	t.Setenv("REPOLENS_OUTPUT_FLAT", "true")

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Concurrency.Workers)
	assert.True(t, cfg.Output.Flat)
}

func TestValidateNormalizesInvalidValues(t *testing.T) {
	cfg := &Config{}
	cfg.Concurrency.Workers = -1
	cfg.Concurrency.MaxDepth = -5
	cfg.Concurrency.Timeout = time.Millisecond
	cfg.Cache.TTL = time.Second
	cfg.GitHub.MaxRetries = -1

	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultWorkers, cfg.Concurrency.Workers)
	assert.Equal(t, DefaultMaxDepth, cfg.Concurrency.MaxDepth)
	assert.Equal(t, DefaultTimeout, cfg.Concurrency.Timeout)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
	assert.Equal(t, DefaultMaxRetries, cfg.GitHub.MaxRetries)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
}

func TestValidateKeepsValidValues(t *testing.T) {
	cfg := &Config{}
	cfg.Concurrency.Workers = 20
	cfg.Concurrency.MaxDepth = 10
	cfg.Concurrency.Timeout = 2 * time.Minute
	cfg.Output.Directory = "/data/docs"

	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.Concurrency.Workers)
	assert.Equal(t, 10, cfg.Concurrency.MaxDepth)
	assert.Equal(t, 2*time.Minute, cfg.Concurrency.Timeout)
	assert.Equal(t, "/data/docs", cfg.Output.Directory)
}
