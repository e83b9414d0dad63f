// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import "errors"

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrNilPublisher is returned when a component is built without a publisher.
var ErrNilPublisher = errors.New("publisher cannot be nil")

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// ErrQueueFull is returned when the sink queue has no room for another message.
var ErrQueueFull = errors.New("sink queue is full")

// ErrSinkClosed is returned by the sink after Close.
var ErrSinkClosed = errors.New("sink is closed")

// ErrAppenderClosed is returned by Append after Close.
var ErrAppenderClosed = errors.New("appender is closed")
