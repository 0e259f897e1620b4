package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brailleforge/brailleforge/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_PortOutOfRange(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Server.Port = 70000
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestConfig_Validate_BadMode(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Server.Mode = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.mode")
}

func TestConfig_Validate_NoEngines(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Assembly.Engines = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assembly.engines")
}

func TestConfig_Validate_UnknownEngine(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Assembly.Engines = []string{"bsp", "openscad"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openscad")
}

func TestConfig_Validate_AttemptExceedsTotal(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Assembly.AttemptTimeout = 5 * time.Minute
	cfg.Assembly.TotalTimeout = time.Minute
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempt_timeout")
}

func TestConfig_Validate_BadLogLevel(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "trace"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestConfig_Validate_BadLogFormat(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestConfig_Validate_LimitsTooSmall(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Limits.MaxGridColumns = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_grid_columns")
}

func TestConfig_Validate_MetricsNamespaceRequired(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics.namespace")
}
