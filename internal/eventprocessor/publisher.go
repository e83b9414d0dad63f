// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmood/internal/metrics"
)

// Publisher wraps a watermill publisher with a circuit breaker.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[struct{}]
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a Publisher.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPublisher(pub message.Publisher, cfg CircuitBreakerConfig, logger zerolog.Logger) (*Publisher, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	logger = logger.With().Str("component", "event-publisher").Logger()
	return &Publisher{
		publisher: pub,
		breaker:   NewCircuitBreaker(cfg, logger),
		logger:    logger,
	}, nil
}

// Publish sends msg to topic through the circuit breaker. It returns
// gobreaker.ErrOpenState while the breaker is open.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg.SetContext(ctx)
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(topic, msg)
	})
	metrics.RecordPublish(topic, err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// State returns the circuit breaker state.
func (p *Publisher) State() gobreaker.State {
	return p.breaker.State()
}

// Close marks the publisher closed. The underlying transport is owned by
// the caller and is not closed here.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
