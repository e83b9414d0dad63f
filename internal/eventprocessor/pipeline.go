// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/logging"
)

// RecordStore persists experiment records in batches.
type RecordStore interface {
	InsertEvents(ctx context.Context, events []experiment.Event) error
	InsertAssignments(ctx context.Context, assignments []experiment.Assignment) error
}

// Pipeline holds the wired components between Manager and RecordStore.
// Sink, Router and both appenders are long-running services with a
// Serve(ctx) method.
type Pipeline struct {
	PubSub             *PubSub
	Publisher          *Publisher
	Sink               *Sink
	Router             *Router
	EventAppender      *Appender[experiment.Event]
	AssignmentAppender *Appender[experiment.Assignment]
}

// NewPipeline builds the transport, publisher, sink, router and appenders.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipeline(cfg *Config, store RecordStore, logger zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: record store is required", ErrInvalidConfig)
	}

	wmLogger := logging.NewWatermillLogger(logger)
	ps, err := NewPubSub(cfg, wmLogger)
	if err != nil {
		return nil, err
	}

	p, err := buildPipeline(cfg, ps, store, logger)
	if err != nil {
		_ = ps.Close() //nolint:errcheck // best effort on construction failure
		return nil, err
	}
	return p, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func buildPipeline(cfg *Config, ps *PubSub, store RecordStore, logger zerolog.Logger) (*Pipeline, error) {
	pub, err := NewPublisher(ps.Publisher, cfg.CircuitBreaker, logger)
	if err != nil {
		return nil, err
	}

	events, err := NewAppender[experiment.Event]("events", store.InsertEvents, cfg.Appender, logger)
	if err != nil {
		return nil, err
	}
	assignments, err := NewAppender[experiment.Assignment]("assignments", store.InsertAssignments, cfg.Appender, logger)
	if err != nil {
		return nil, err
	}

	router, err := NewRouter(cfg.Router, logging.NewWatermillLogger(logger))
	if err != nil {
		return nil, err
	}
	handler := NewHandler(events, assignments, cfg, logger)
	router.AddConsumerHandler("experiment-events", cfg.Topic, ps.Subscriber, handler.HandleEvent)
	router.AddConsumerHandler("experiment-assignments", cfg.AssignmentTopic, ps.Subscriber, handler.HandleAssignment)

	sink, err := NewSink(pub, SinkOptions{
		EventTopic:      cfg.Topic,
		AssignmentTopic: cfg.AssignmentTopic,
		QueueSize:       cfg.QueueSize,
		Workers:         cfg.Workers,
		PublishTimeout:  cfg.PublishTimeout,
		Ready:           router.Running(),
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		PubSub:             ps,
		Publisher:          pub,
		Sink:               sink,
		Router:             router,
		EventAppender:      events,
		AssignmentAppender: assignments,
	}, nil
}

// Close shuts the pipeline down front to back. Services run under a
// supervisor are normally stopped by cancelling their context first.
func (p *Pipeline) Close(ctx context.Context) error {
	return errors.Join(
		p.Sink.Close(),
		p.Publisher.Close(),
		p.Router.Close(),
		p.EventAppender.Close(ctx),
		p.AssignmentAppender.Close(ctx),
		p.PubSub.Close(),
	)
}
