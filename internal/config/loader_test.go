package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8080
  mode: "release"
assembly:
  engines: ["bsp", "scanfill"]
  attempt_timeout: 30s
  total_timeout: 2m
  feature_workers: 4
limits:
  max_grid_columns: 64
  max_grid_rows: 32
  max_concurrent_generates: 8
log:
  level: "info"
  format: "json"
metrics:
  enabled: true
  namespace: "brailleforge"
`

func createTempConfigFile(t *testing.T, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, []string{"bsp", "scanfill"}, cfg.Assembly.Engines)
	assert.Equal(t, 64, cfg.Limits.MaxGridColumns)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := createTempConfigFile(t, "server: [not: closed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_AppliesDefaultsForUnsetFields(t *testing.T) {
	path := createTempConfigFile(t, "server:\n  port: 9000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultEngines(), cfg.Assembly.Engines)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestLoad_InvalidEngineRejected(t *testing.T) {
	path := createTempConfigFile(t, "assembly:\n  engines: [\"openscad\"]\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BRAILLEFORGE_SERVER_PORT", "9999")
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadFromEnv_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultEngines(), cfg.Assembly.Engines)
}

func TestLoadFromEnv_WithVariables(t *testing.T) {
	t.Setenv("BRAILLEFORGE_LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestMustLoad_ReturnsConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg := MustLoad(path)
	assert.NotNil(t, cfg)
}

func TestWatch_DoesNotBlock(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	Watch(path, func(*Config) {})
}
