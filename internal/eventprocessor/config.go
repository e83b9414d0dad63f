// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"fmt"
	"time"
)

// Transports supported by NewPubSub.
const (
	TransportChannel = "channel"
	TransportNATS    = "nats"
)

// Config holds the settings for the whole pipeline.
type Config struct {
	Transport string
	NATSURL   string

	// Topic carries experiment events, AssignmentTopic new assignments.
	Topic           string
	AssignmentTopic string

	// QueueSize bounds the sink queue; Workers drain it.
	QueueSize      int
	Workers        int
	PublishTimeout time.Duration

	Appender       AppenderConfig
	Router         RouterConfig
	CircuitBreaker CircuitBreakerConfig
	NATS           NATSConfig
}

// DefaultConfig returns in-process defaults.
func DefaultConfig() Config {
	return Config{
		Transport:       TransportChannel,
		NATSURL:         "nats://127.0.0.1:4222",
		Topic:           "experiment.events",
		AssignmentTopic: "experiment.assignments",
		QueueSize:       10000,
		Workers:         4,
		PublishTimeout:  5 * time.Second,
		Appender:        DefaultAppenderConfig(),
		Router:          DefaultRouterConfig(),
		CircuitBreaker:  DefaultCircuitBreakerConfig("event-publisher"),
		NATS:            DefaultNATSConfig(),
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportChannel, TransportNATS:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if c.Transport == TransportNATS && c.NATSURL == "" {
		return fmt.Errorf("%w: nats url is required", ErrInvalidConfig)
	}
	if c.Topic == "" || c.AssignmentTopic == "" {
		return fmt.Errorf("%w: topics are required", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.PublishTimeout <= 0 {
		return fmt.Errorf("%w: publish timeout must be positive", ErrInvalidConfig)
	}
	return c.Appender.Validate()
}

// AppenderConfig controls batched writes to the store.
type AppenderConfig struct {
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultAppenderConfig returns production defaults for the appenders.
func DefaultAppenderConfig() AppenderConfig {
	return AppenderConfig{
		BatchSize:     500,
		FlushInterval: 2 * time.Second,
	}
}

// Validate checks the appender configuration.
func (c AppenderConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("%w: flush interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// RouterConfig holds configuration for the watermill router.
type RouterConfig struct {
	// CloseTimeout is how long handlers may run after Close.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// DeduplicationTTL of 0 disables message-ID deduplication.
	DeduplicationTTL time.Duration
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
		DeduplicationTTL:     5 * time.Minute,
	}
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // allowed in half-open state
	Interval         time.Duration // count reset interval while closed
	Timeout          time.Duration // time spent open before half-open
	FailureThreshold uint32        // consecutive failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// NATSConfig holds JetStream connection and consumer settings.
type NATSConfig struct {
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxReconnects    int
	ReconnectWait    time.Duration
	CloseTimeout     time.Duration
}

// DefaultNATSConfig returns production defaults for NATS.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		DurableName:      "experiment-recorder",
		QueueGroup:       "recorders",
		SubscribersCount: 2,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,
		MaxReconnects:    -1, // unlimited
		ReconnectWait:    2 * time.Second,
		CloseTimeout:     30 * time.Second,
	}
}
