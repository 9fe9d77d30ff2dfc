// Package config defines service configuration and its defaults.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory profile update queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many update ids are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxMatchLimit caps GET /matches?limit.
	MaxMatchLimit int `koanf:"max_match_limit"`

	// DefaultMatchLimit applies when no limit is given.
	DefaultMatchLimit int `koanf:"default_match_limit"`

	// RankingConcurrency bounds goroutines scoring candidates for one request.
	RankingConcurrency int `koanf:"ranking_concurrency"`

	// AcceptedLimit caps accepted requests returned by GET /match-requests.
	AcceptedLimit int `koanf:"accepted_limit"`

	// DatabaseURL switches storage to Postgres when set.
	DatabaseURL string `koanf:"database_url"`

	// SeedFile is an optional YAML list of profiles loaded at startup.
	SeedFile string `koanf:"seed_file"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         50_000,
		MaxMatchLimit:      100,
		DefaultMatchLimit:  20,
		RankingConcurrency: runtime.NumCPU() * 4,
		AcceptedLimit:      10,
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.MaxMatchLimit <= 0:
		return fmt.Errorf("%w: max_match_limit must be positive, got %d", ErrInvalidConfig, c.MaxMatchLimit)
	case c.DefaultMatchLimit <= 0 || c.DefaultMatchLimit > c.MaxMatchLimit:
		return fmt.Errorf("%w: default_match_limit must be in [1, %d], got %d",
			ErrInvalidConfig, c.MaxMatchLimit, c.DefaultMatchLimit)
	case c.RankingConcurrency <= 0:
		return fmt.Errorf("%w: ranking_concurrency must be positive, got %d", ErrInvalidConfig, c.RankingConcurrency)
	case c.AcceptedLimit <= 0:
		return fmt.Errorf("%w: accepted_limit must be positive, got %d", ErrInvalidConfig, c.AcceptedLimit)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
