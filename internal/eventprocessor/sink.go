// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/metrics"
)

// MessagePublisher publishes one message to a topic.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

type envelope struct {
	topic string
	msg   *message.Message
}

// SinkOptions configures a Sink.
type SinkOptions struct {
	EventTopic      string
	AssignmentTopic string
	QueueSize       int
	Workers         int
	PublishTimeout  time.Duration

	// Ready, when set, holds workers back until it is closed. Messages
	// queue up in the meantime.
	Ready <-chan struct{}
}

// SinkStats is a snapshot of sink counters.
type SinkStats struct {
	Enqueued  int64
	Published int64
	Failed    int64
	Queued    int
}

// Sink decouples Manager.Track from the transport: RecordEvent and
// RecordAssignment enqueue without blocking and Serve publishes in the
// background.
type Sink struct {
	publisher MessagePublisher
	opts      SinkOptions
	queue     chan envelope
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool

	enqueued  atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
}

var (
	_ experiment.EventSink          = (*Sink)(nil)
	_ experiment.AssignmentRecorder = (*Sink)(nil)
)

// NewSink creates a Sink. Call Serve to start publishing.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSink(pub MessagePublisher, opts SinkOptions, logger zerolog.Logger) (*Sink, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	if opts.QueueSize <= 0 || opts.Workers <= 0 || opts.PublishTimeout <= 0 {
		return nil, ErrInvalidConfig
	}
	if opts.EventTopic == "" || opts.AssignmentTopic == "" {
		return nil, ErrInvalidConfig
	}
	return &Sink{
		publisher: pub,
		opts:      opts,
		queue:     make(chan envelope, opts.QueueSize),
		logger:    logger.With().Str("component", "event-sink").Logger(),
	}, nil
}

// RecordEvent queues event for publication.
func (s *Sink) RecordEvent(_ context.Context, event experiment.Event) error {
	msg, err := NewEventMessage(&event)
	if err != nil {
		return err
	}
	return s.enqueue(s.opts.EventTopic, msg)
}

// RecordAssignment queues a new assignment for publication.
func (s *Sink) RecordAssignment(_ context.Context, a experiment.Assignment) error {
	msg, err := NewAssignmentMessage(&a)
	if err != nil {
		return err
	}
	return s.enqueue(s.opts.AssignmentTopic, msg)
}

func (s *Sink) enqueue(topic string, msg *message.Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.queue <- envelope{topic: topic, msg: msg}:
		s.enqueued.Add(1)
		return nil
	default:
		return ErrQueueFull
	}
}

// Serve runs the publishing workers until ctx is cancelled, then drains
// what is left in the queue.
func (s *Sink) Serve(ctx context.Context) error {
	if s.opts.Ready != nil {
		select {
		case <-s.opts.Ready:
		case <-ctx.Done():
			s.drain()
			return ctx.Err()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.opts.Workers; i++ {
		g.Go(func() error {
			s.work(gctx)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	s.drain()
	return ctx.Err()
}

func (s *Sink) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-s.queue:
			s.publish(env)
		}
	}
}

// drain publishes queued messages left over after shutdown.
func (s *Sink) drain() {
	for {
		select {
		case env := <-s.queue:
			s.publish(env)
		default:
			return
		}
	}
}

func (s *Sink) publish(env envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, env.topic, env.msg); err != nil {
		s.failed.Add(1)
		metrics.RecordEventDropped("publish_error")
		s.logger.Warn().Err(err).
			Str("topic", env.topic).
			Str("message_id", env.msg.UUID).
			Msg("Failed to publish message")
		return
	}
	s.published.Add(1)
}

// Close stops accepting messages. Serve still drains the queue.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Stats returns a snapshot of the sink counters.
func (s *Sink) Stats() SinkStats {
	return SinkStats{
		Enqueued:  s.enqueued.Load(),
		Published: s.published.Load(),
		Failed:    s.failed.Load(),
		Queued:    len(s.queue),
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Sink) String() string {
	return "event-sink"
}
