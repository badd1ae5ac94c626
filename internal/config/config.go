// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"runtime"
	"time"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the snapshot backend: memory or file.
	Store string `koanf:"store"`

	// DataDir is the directory of the file store.
	DataDir string `koanf:"data_dir"`

	// PersistQueueSize bounds the in-memory snapshot queue.
	PersistQueueSize int `koanf:"persist_queue_size"`

	// PersistWorkers sets the number of persistence workers.
	PersistWorkers int `koanf:"persist_workers"`

	// PersistDebounceMS is how long a worker waits for newer snapshots of
	// the same match before writing.
	PersistDebounceMS int `koanf:"persist_debounce_ms"`

	// DedupeSize sets the size of the command id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RateLimitRPS and RateLimitBurst bound requests per client IP.
	// RateLimitRPS <= 0 disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// CORSOrigins lists the allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// ChronoTickMS is the period of the match chrono.
	ChronoTickMS int `koanf:"chrono_tick_ms"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// Metrics configures the Prometheus exporter.
	Metrics Metrics `koanf:"metrics"`
}

// Metrics holds the exporter settings. From the environment they are set
// with flat keys such as COURTSIDE_METRICS_NAMESPACE.
type Metrics struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
	// Prefix is prepended to every metric name after the subsystem.
	Prefix string `koanf:"prefix"`
	// Buckets overrides the latency histogram buckets, in milliseconds.
	Buckets []float64 `koanf:"buckets"`
	// Labels are constant labels added to every series, e.g. region=eu.
	Labels    map[string]string `koanf:"labels"`
	RefreshMS int               `koanf:"refresh_ms"`
}

// New creates a Config with defaults. The context is reserved for loaders.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		Store:             StoreMemory,
		DataDir:           "data",
		PersistQueueSize:  10_000,
		PersistWorkers:    runtime.NumCPU(),
		PersistDebounceMS: 250,
		DedupeSize:        100_000,
		RateLimitRPS:      50,
		RateLimitBurst:    100,
		CORSOrigins:       []string{"*"},
		ChronoTickMS:      1000,
		ShutdownTimeoutMS: 10_000,
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "courtside",
			Subsystem: "scorekeeper",
			RefreshMS: 10_000,
		},
	}
}

// MetricsRefresh returns Metrics.RefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.Metrics.RefreshMS) * time.Millisecond
}

// PersistDebounce returns PersistDebounceMS as a duration.
func (c *Config) PersistDebounce() time.Duration {
	return time.Duration(c.PersistDebounceMS) * time.Millisecond
}

// ChronoTick returns ChronoTickMS as a duration.
func (c *Config) ChronoTick() time.Duration {
	return time.Duration(c.ChronoTickMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
