package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "filesystem", cfg.Artifacts.Backend)
	assert.Equal(t, "raw-inputs", cfg.Artifacts.RawBucket)
	assert.Equal(t, "processed-pdfs", cfg.Artifacts.ProcessedBucket)
	assert.Equal(t, 4, cfg.Workers.Count)
	assert.Equal(t, 3, cfg.Retention.AccessThreshold)

	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Minute, cfg.RetentionWindow())
	assert.Equal(t, 10*time.Minute, cfg.CleanupInterval())
	assert.Equal(t, 5*time.Minute, cfg.DefaultToolTimeout())
	assert.Equal(t, 10*time.Minute, cfg.OfficeToolTimeout())
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docsmart.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[workers]
count = 2
poll_interval = "1s"

[retention]
access_threshold = 5
`), 0644))

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Workers.Count)
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 5, cfg.Retention.AccessThreshold)

	// Untouched sections keep their defaults.
	assert.Equal(t, "filesystem", cfg.Artifacts.Backend)
	assert.Equal(t, 30, cfg.Queue.AverageJobTimeSeconds)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/docsmart.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCSMART_PORT", "7070")
	t.Setenv("DOCSMART_WORKERS", "8")
	t.Setenv("DOCSMART_ARTIFACT_BACKEND", "s3")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Workers.Count)
	assert.Equal(t, "s3", cfg.Artifacts.Backend)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 6060, "127.0.0.1")
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Zero values leave config untouched.
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := NewDefaultConfig()

	cfg.Workers.PollInterval = "not-a-duration"
	assert.Equal(t, 5*time.Second, cfg.PollInterval())

	cfg.Retention.Window = "-5m"
	assert.Equal(t, 10*time.Minute, cfg.RetentionWindow())

	cfg.Tools.DefaultTimeout = ""
	assert.Equal(t, 5*time.Minute, cfg.DefaultToolTimeout())
}
