// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import (
	"time"
)

// Well-known event names read by the Analyzer.
const (
	EventConversion   = "conversion"
	EventTimeSpent    = "time_spent"
	EventInteractions = "interactions"
)

// Experiment is a registered A/B test. Values returned by the Manager are copies.
type Experiment struct {
	Name     string    `json:"name"`
	Variants []string  `json:"variants"`
	Weights  []float64 `json:"weights"`
}

func (e *Experiment) clone() Experiment {
	return Experiment{
		Name:     e.Name,
		Variants: append([]string(nil), e.Variants...),
		Weights:  append([]float64(nil), e.Weights...),
	}
}

// Definition is the declarative form of an experiment, as loaded from config.
type Definition struct {
	Name     string    `koanf:"name" json:"name" validate:"required,identifier,max=128"`
	Variants []string  `koanf:"variants" json:"variants" validate:"min=1,unique,dive,required"`
	Weights  []float64 `koanf:"weights" json:"weights,omitempty" validate:"omitempty,dive,gte=0,lte=1"`
}

// Event is one tracked user action within an experiment variant.
type Event struct {
	ID             string    `json:"id"`
	ExperimentName string    `json:"experiment_name"`
	Variant        string    `json:"variant"`
	UserID         string    `json:"user_id"`
	EventName      string    `json:"event_name"`
	Value          float64   `json:"value"`
	Timestamp      time.Time `json:"timestamp"`
}

// Assignment records which variant a user was given.
type Assignment struct {
	ExperimentName string    `json:"experiment_name"`
	Variant        string    `json:"variant"`
	UserID         string    `json:"user_id"`
	AssignedAt     time.Time `json:"assigned_at"`
}
