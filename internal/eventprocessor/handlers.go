// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/metrics"
)

// RecordAppender accepts decoded records for batched persistence.
type RecordAppender[T any] interface {
	Append(ctx context.Context, records ...T) error
}

// Handler decodes consumed messages and hands them to the appenders.
type Handler struct {
	events          RecordAppender[experiment.Event]
	assignments     RecordAppender[experiment.Assignment]
	eventTopic      string
	assignmentTopic string
	logger          zerolog.Logger
}

// NewHandler creates a Handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(
	events RecordAppender[experiment.Event],
	assignments RecordAppender[experiment.Assignment],
	cfg *Config,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		events:          events,
		assignments:     assignments,
		eventTopic:      cfg.Topic,
		assignmentTopic: cfg.AssignmentTopic,
		logger:          logger.With().Str("component", "event-handler").Logger(),
	}
}

// HandleEvent persists one experiment event. Undecodable payloads are
// logged, counted and acknowledged since redelivery cannot fix them.
func (h *Handler) HandleEvent(msg *message.Message) error {
	event, err := DecodeEvent(msg.Payload)
	if err != nil {
		h.reject(msg, err)
		return nil
	}
	if err := h.events.Append(msg.Context(), event); err != nil {
		return err
	}
	metrics.RecordConsume(h.eventTopic, 1)
	return nil
}

// HandleAssignment persists one assignment.
func (h *Handler) HandleAssignment(msg *message.Message) error {
	a, err := DecodeAssignment(msg.Payload)
	if err != nil {
		h.reject(msg, err)
		return nil
	}
	if err := h.assignments.Append(msg.Context(), a); err != nil {
		return err
	}
	metrics.RecordConsume(h.assignmentTopic, 1)
	return nil
}

func (h *Handler) reject(msg *message.Message, err error) {
	metrics.RecordEventDropped("malformed")
	h.logger.Warn().Err(err).
		Str("message_id", msg.UUID).
		Str("kind", msg.Metadata.Get(MetadataKind)).
		Msg("Dropping malformed message")
}
