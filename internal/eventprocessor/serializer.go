// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/reelmood/internal/experiment"
)

// Message metadata keys.
const (
	MetadataExperiment = "experiment"
	MetadataKind       = "kind"
)

// Message kinds.
const (
	KindEvent      = "event"
	KindAssignment = "assignment"
)

var errMissingField = errors.New("missing required field")

// NewEventMessage encodes event as a watermill message. The event ID becomes
// the message UUID so redeliveries deduplicate.
func NewEventMessage(event *experiment.Event) (*message.Message, error) {
	if event.ExperimentName == "" || event.UserID == "" || event.EventName == "" {
		return nil, fmt.Errorf("encode event: %w", errMissingField)
	}
	id := event.ID
	if id == "" {
		id = uuid.NewString()
		event.ID = id
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(id, payload)
	msg.Metadata.Set(MetadataExperiment, event.ExperimentName)
	msg.Metadata.Set(MetadataKind, KindEvent)
	return msg, nil
}

// DecodeEvent decodes a payload produced by NewEventMessage.
func DecodeEvent(payload []byte) (experiment.Event, error) {
	var event experiment.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return experiment.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.ID == "" || event.ExperimentName == "" || event.UserID == "" {
		return experiment.Event{}, fmt.Errorf("decode event: %w", errMissingField)
	}
	return event, nil
}

// NewAssignmentMessage encodes an assignment. Its message UUID is derived
// from the (experiment, user) key, which is unique per assignment.
func NewAssignmentMessage(a *experiment.Assignment) (*message.Message, error) {
	if a.ExperimentName == "" || a.UserID == "" || a.Variant == "" {
		return nil, fmt.Errorf("encode assignment: %w", errMissingField)
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal assignment: %w", err)
	}

	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(a.ExperimentName+"\x00"+a.UserID)).String()
	msg := message.NewMessage(id, payload)
	msg.Metadata.Set(MetadataExperiment, a.ExperimentName)
	msg.Metadata.Set(MetadataKind, KindAssignment)
	return msg, nil
}

// DecodeAssignment decodes a payload produced by NewAssignmentMessage.
func DecodeAssignment(payload []byte) (experiment.Assignment, error) {
	var a experiment.Assignment
	if err := json.Unmarshal(payload, &a); err != nil {
		return experiment.Assignment{}, fmt.Errorf("unmarshal assignment: %w", err)
	}
	if a.ExperimentName == "" || a.UserID == "" || a.Variant == "" {
		return experiment.Assignment{}, fmt.Errorf("decode assignment: %w", errMissingField)
	}
	return a, nil
}
