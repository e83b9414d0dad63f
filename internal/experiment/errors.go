// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import "errors"

var (
	// ErrExperimentNotFound is returned when an operation names an experiment
	// that has not been registered.
	ErrExperimentNotFound = errors.New("experiment not found")

	// ErrInvalidExperiment is returned by Register for an empty name, no
	// variants, or a weight count that does not match the variant count.
	ErrInvalidExperiment = errors.New("invalid experiment")
)
