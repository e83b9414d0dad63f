// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/reelmood/internal/recommend"
)

// DefaultConfigPaths lists the config file locations searched in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmood/config.yaml",
	"/etc/reelmood/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. They are loaded first and
// then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:                   "/data/reelmood.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // runtime.NumCPU()
			PreserveInsertionOrder: true,
		},
		Assignments: AssignmentsConfig{
			Backend:    AssignmentBackendMemory,
			BadgerPath: "/data/assignments",
		},
		Events: EventsConfig{
			Transport:            TransportChannel,
			NATSURL:              "nats://127.0.0.1:4222",
			Topic:                "experiment.events",
			AssignmentTopic:      "experiment.assignments",
			QueueSize:            10000,
			Workers:              4,
			PublishTimeout:       5 * time.Second,
			BatchSize:            500,
			FlushInterval:        2 * time.Second,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			DeduplicationTTL:     5 * time.Minute,
			CloseTimeout:         30 * time.Second,
			DurableName:          "experiment-recorder",
			QueueGroup:           "recorders",
			CircuitBreaker: CircuitBreakerConfig{
				MaxRequests:      3,
				Interval:         30 * time.Second,
				Timeout:          10 * time.Second,
				FailureThreshold: 5,
			},
		},
		Mood: MoodConfig{
			CacheSize: 1000,
			CacheTTL:  10 * time.Minute,
		},
		Recommend: *recommend.DefaultConfig(),
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			QueryTimeout:    10 * time.Second,
			// Empty means same-origin only
			CORSOrigins:       []string{},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Random: RandomConfig{Seed: 0},
		Reporter: ReporterConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
		},
	}
}

// LoadWithKoanf loads configuration with the precedence ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are config paths whose env values are comma-separated lists.
var sliceConfigPaths = []string{
	"bootstrap.variants",
	"server.cors_origins",
}

// processSliceFields splits comma-separated string values into slices for
// the paths in sliceConfigPaths. Values that are already lists (from YAML)
// are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to config paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Assignments
	"assignment_backend":     "assignments.backend",
	"assignment_badger_path": "assignments.badger_path",

	// Events
	"events_transport":        "events.transport",
	"nats_url":                "events.nats_url",
	"events_topic":            "events.topic",
	"events_assignment_topic": "events.assignment_topic",
	"events_queue_size":       "events.queue_size",
	"events_workers":          "events.workers",
	"events_publish_timeout":  "events.publish_timeout",
	"events_batch_size":       "events.batch_size",
	"events_flush_interval":   "events.flush_interval",
	"events_retry_count":      "events.retry_count",
	"events_dedup_ttl":        "events.deduplication_ttl",
	"nats_durable_name":       "events.durable_name",
	"nats_queue_group":        "events.queue_group",

	// Mood
	"mood_cache_size": "mood.cache_size",
	"mood_cache_ttl":  "mood.cache_ttl",

	// Recommendations
	"recommend_default_limit":     "recommend.default_limit",
	"recommend_max_limit":         "recommend.max_limit",
	"recommend_similarity_weight": "recommend.similarity_weight",
	"recommend_diversity_lambda":  "recommend.diversity_lambda",

	// Server
	"server_address":      "server.address",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"http_query_timeout":  "server.query_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	// Experiments
	"random_seed":          "random.seed",
	"reporter_enabled":     "reporter.enabled",
	"reporter_interval":    "reporter.interval",
	"bootstrap_experiment": "bootstrap.name",
	"bootstrap_variants":   "bootstrap.variants",
}

// envTransformFunc maps environment variable names to koanf paths.
//
// Examples:
//   - LOG_LEVEL -> logging.level
//   - DUCKDB_PATH -> database.path
//   - EVENTS_TRANSPORT -> events.transport
//   - RANDOM_SEED -> random.seed
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
