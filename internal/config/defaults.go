// Package config provides configuration loading, defaults, and validation for
// the brailleforge service.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultMaxBodySize     = 1 << 20 // 1 MiB of text is far beyond any plate
	DefaultShutdownTimeout = 15 * time.Second

	DefaultAttemptTimeout = 30 * time.Second
	DefaultTotalTimeout   = 2 * time.Minute
	DefaultFeatureWorkers = 4

	DefaultMaxGridColumns         = 64
	DefaultMaxGridRows            = 32
	DefaultMaxConcurrentGenerates = 8

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "brailleforge"
)

// DefaultEngines is the standard boolean ladder: exact BSP clipping first,
// voxel parity sampling as the robust fallback.
func DefaultEngines() []string { return []string{"bsp", "scanfill"} }

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// STL responses for dense cylinders take a while to stream.
		cfg.Server.WriteTimeout = 3 * time.Minute
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// ── Assembly ──────────────────────────────────────────────────────────────
	if len(cfg.Assembly.Engines) == 0 {
		cfg.Assembly.Engines = DefaultEngines()
	}
	if cfg.Assembly.AttemptTimeout == 0 {
		cfg.Assembly.AttemptTimeout = DefaultAttemptTimeout
	}
	if cfg.Assembly.TotalTimeout == 0 {
		cfg.Assembly.TotalTimeout = DefaultTotalTimeout
	}
	if cfg.Assembly.FeatureWorkers == 0 {
		cfg.Assembly.FeatureWorkers = DefaultFeatureWorkers
	}

	// ── Limits ────────────────────────────────────────────────────────────────
	if cfg.Limits.MaxGridColumns == 0 {
		cfg.Limits.MaxGridColumns = DefaultMaxGridColumns
	}
	if cfg.Limits.MaxGridRows == 0 {
		cfg.Limits.MaxGridRows = DefaultMaxGridRows
	}
	if cfg.Limits.MaxConcurrentGenerates == 0 {
		cfg.Limits.MaxConcurrentGenerates = DefaultMaxConcurrentGenerates
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
