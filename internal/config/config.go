// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL locates the rating backend that owns players,
	// games and rating snapshots.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamTimeoutMS bounds every backend call.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// SessionTTLMin evicts roster sessions idle this many minutes.
	SessionTTLMin int `koanf:"session_ttl_min"`

	// SessionSweepSec sets the eviction sweep interval.
	SessionSweepSec int `koanf:"session_sweep_sec"`

	// MaxSessions caps concurrently open roster sessions.
	MaxSessions int `koanf:"max_sessions"`

	// DefaultScope applies when the leaderboard request names none:
	// monthly, yearly or overall.
	DefaultScope string `koanf:"default_scope"`

	// RecentSubmitSize bounds the duplicate-submission fingerprint window
	// by count.
	RecentSubmitSize int `koanf:"recent_submit_size"`

	// RecentSubmitWindowSec bounds the same window by age, so only rapid
	// replays are refused and a later identical rematch goes through.
	RecentSubmitWindowSec int `koanf:"recent_submit_window_sec"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9090",
		UpstreamBaseURL:       "http://localhost:8000",
		UpstreamTimeoutMS:     10_000,
		SessionTTLMin:         30,
		SessionSweepSec:       60,
		MaxSessions:           256,
		DefaultScope:          "yearly",
		RecentSubmitSize:      1024,
		RecentSubmitWindowSec: 10,
	}
}
