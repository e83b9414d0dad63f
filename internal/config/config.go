// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

// Package config loads Reelmood configuration with koanf.
//
// Sources are layered with increasing priority:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file (CONFIG_PATH, or the first of DefaultConfigPaths that exists)
//  3. Environment variables listed in envTransformFunc
//
// The merged result is validated before Load returns it.
package config

import (
	"time"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/recommend"
)

// Config is the complete service configuration.
type Config struct {
	Logging     LoggingConfig           `koanf:"logging"`
	Database    DatabaseConfig          `koanf:"database"`
	Assignments AssignmentsConfig       `koanf:"assignments"`
	Events      EventsConfig            `koanf:"events"`
	Mood        MoodConfig              `koanf:"mood"`
	Recommend   recommend.Config        `koanf:"recommend"`
	Experiments []experiment.Definition `koanf:"experiments"`
	Bootstrap   BootstrapConfig         `koanf:"bootstrap"`
	Server      ServerConfig            `koanf:"server"`
	Random      RandomConfig            `koanf:"random"`
	Reporter    ReporterConfig          `koanf:"reporter"`
}

// LoggingConfig holds zerolog settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings for the experiment event store.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for an in-process database.
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory" validate:"required"`
	// Threads is the DuckDB worker count. 0 uses runtime.NumCPU().
	Threads                int  `koanf:"threads" validate:"gte=0"`
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`
	// SkipIndexes skips the index migration, for fast test setup.
	SkipIndexes bool `koanf:"skip_indexes"`
}

// Assignment store backends.
const (
	AssignmentBackendMemory = "memory"
	AssignmentBackendBadger = "badger"
)

// AssignmentsConfig selects where sticky variant assignments live.
type AssignmentsConfig struct {
	Backend string `koanf:"backend" validate:"oneof=memory badger"`
	// BadgerPath is the Badger directory. Empty runs Badger in memory.
	BadgerPath string `koanf:"badger_path"`
}

// Event transports.
const (
	TransportChannel = "channel"
	TransportNATS    = "nats"
)

// EventsConfig controls the pipeline that carries tracked events and new
// assignments from the experiment manager to DuckDB.
type EventsConfig struct {
	// Transport is "channel" for in-process delivery or "nats" for NATS JetStream.
	Transport string `koanf:"transport" validate:"oneof=channel nats"`
	NATSURL   string `koanf:"nats_url"`

	Topic           string `koanf:"topic" validate:"required"`
	AssignmentTopic string `koanf:"assignment_topic" validate:"required"`

	// QueueSize bounds the sink queue. Events are dropped when it is full.
	QueueSize      int           `koanf:"queue_size" validate:"gt=0"`
	Workers        int           `koanf:"workers" validate:"gt=0"`
	PublishTimeout time.Duration `koanf:"publish_timeout" validate:"gt=0"`

	// BatchSize and FlushInterval control how consumed messages are written.
	BatchSize     int           `koanf:"batch_size" validate:"gt=0"`
	FlushInterval time.Duration `koanf:"flush_interval" validate:"gt=0"`

	// Router middleware
	RetryCount           int           `koanf:"retry_count" validate:"gte=0"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	DeduplicationTTL     time.Duration `koanf:"deduplication_ttl"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`

	// NATS consumer settings
	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig protects the publisher when the transport is failing.
type CircuitBreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gt=0"`
}

// MoodConfig controls memoization in the mood classifier.
type MoodConfig struct {
	// CacheSize of 0 disables caching.
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// BootstrapConfig declares one uniformly weighted experiment from the
// environment, for deployments without a config file.
type BootstrapConfig struct {
	Name     string   `koanf:"name"`
	Variants []string `koanf:"variants"`
}

// ServerConfig holds the HTTP server settings.
//
// Environment Variables:
//   - SERVER_ADDRESS: listen address (default: :8080)
//   - CORS_ORIGINS: comma-separated allowed origins (default: none)
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: write limit per client IP
//   - DISABLE_RATE_LIMIT: turn write limiting off
type ServerConfig struct {
	Address         string        `koanf:"address" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// QueryTimeout bounds analytics queries made by API handlers.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gte=0"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// RandomConfig seeds variant selection.
type RandomConfig struct {
	// Seed of 0 seeds from the clock.
	Seed uint64 `koanf:"seed"`
}

// ReporterConfig controls the periodic significance report.
type ReporterConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// ExperimentDefinitions returns the configured experiments followed by the
// bootstrap experiment, if one is named.
func (c *Config) ExperimentDefinitions() []experiment.Definition {
	defs := make([]experiment.Definition, 0, len(c.Experiments)+1)
	defs = append(defs, c.Experiments...)
	if c.Bootstrap.Name != "" {
		defs = append(defs, experiment.Definition{
			Name:     c.Bootstrap.Name,
			Variants: c.Bootstrap.Variants,
		})
	}
	return defs
}

// Load reads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
