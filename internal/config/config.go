// Package config defines all configuration structures for the brailleforge
// service.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AssemblyConfig holds boolean-engine parameters.
type AssemblyConfig struct {
	// Engines is the ordered fallback ladder, e.g. ["bsp", "scanfill"].
	Engines        []string      `mapstructure:"engines"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	TotalTimeout   time.Duration `mapstructure:"total_timeout"`
	// FeatureWorkers bounds the goroutines building feature primitives.
	FeatureWorkers int `mapstructure:"feature_workers"`
}

// LimitsConfig caps per-request work so one generation cannot starve the
// service.
type LimitsConfig struct {
	MaxGridColumns         int `mapstructure:"max_grid_columns"`
	MaxGridRows            int `mapstructure:"max_grid_rows"`
	MaxConcurrentGenerates int `mapstructure:"max_concurrent_generates"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	SamplingRate     int    `mapstructure:"sampling_rate"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Namespace            string `mapstructure:"namespace"`
	Subsystem            string `mapstructure:"subsystem"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the service.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Assembly AssemblyConfig `mapstructure:"assembly"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// knownEngines are the boolean back ends the assembly ladder can name.
var knownEngines = map[string]bool{
	"bsp":      true,
	"scanfill": true,
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Assembly
	if len(c.Assembly.Engines) == 0 {
		return fmt.Errorf("config: assembly.engines must name at least one engine")
	}
	for _, e := range c.Assembly.Engines {
		if !knownEngines[e] {
			return fmt.Errorf("config: assembly.engines names unknown engine %q", e)
		}
	}
	if c.Assembly.AttemptTimeout < 0 {
		return fmt.Errorf("config: assembly.attempt_timeout must be ≥ 0, got %v", c.Assembly.AttemptTimeout)
	}
	if c.Assembly.TotalTimeout > 0 && c.Assembly.AttemptTimeout > c.Assembly.TotalTimeout {
		return fmt.Errorf("config: assembly.attempt_timeout %v exceeds total_timeout %v",
			c.Assembly.AttemptTimeout, c.Assembly.TotalTimeout)
	}
	if c.Assembly.FeatureWorkers < 1 {
		return fmt.Errorf("config: assembly.feature_workers must be ≥ 1, got %d", c.Assembly.FeatureWorkers)
	}

	// Limits
	if c.Limits.MaxGridColumns < 3 {
		return fmt.Errorf("config: limits.max_grid_columns must be ≥ 3, got %d", c.Limits.MaxGridColumns)
	}
	if c.Limits.MaxGridRows < 1 {
		return fmt.Errorf("config: limits.max_grid_rows must be ≥ 1, got %d", c.Limits.MaxGridRows)
	}
	if c.Limits.MaxConcurrentGenerates < 1 {
		return fmt.Errorf("config: limits.max_concurrent_generates must be ≥ 1, got %d", c.Limits.MaxConcurrentGenerates)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}
