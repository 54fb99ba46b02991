package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  url: http://localhost:9000
  timeout: 5s
catalog:
  source: postgres
  ttl: 1m
analytics:
  max_score: 10
  trend_window: 5
log:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.Backend.URL)
	assert.Equal(t, "postgres", cfg.Catalog.Source)
	assert.Equal(t, 10, cfg.Analytics.MaxScore)
	assert.Equal(t, 5, cfg.Analytics.TrendWindow)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, TTLDuration(cfg.Backend.Timeout, time.Second))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://quizzer-backend-three.vercel.app", cfg.Backend.URL)
	assert.Equal(t, "backend", cfg.Catalog.Source)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Storage.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redis:\n  addr: file:6379\n"), 0o600))

	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PORT", "9999")
	t.Setenv("QUIZZER_STORAGE_PATH", "/tmp/q.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "/tmp/q.db", cfg.Storage.Path)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestTTLDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, TTLDuration("90s", time.Minute))
}
