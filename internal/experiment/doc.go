// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

/*
Package experiment runs A/B experiments over recommendation variants.

# Assignment

A Manager owns the registered experiments and an AssignmentStore. The first
call to Assign for a (user, experiment) pair draws r in [0, 1) from the
RandomSource and walks the cumulative weights; the variant is then persisted
and returned on every later call:

	m := experiment.NewManager(experiment.Options{
	    AssignmentStore: experiment.NewBadgerStore(db),
	    RandomSource:    experiment.NewRandomSource(seed),
	    EventSink:       sink,
	    Logger:          logger,
	})
	_ = m.Register("row-layout", []string{"grid", "carousel"}, 0.5, 0.5)
	variant, err := m.Assign(ctx, userID, "row-layout")

Assignments are sticky for the lifetime of the store. MemoryStore forgets them
on restart; BadgerStore keeps them on disk. Neither coordinates between
processes, so users may see different variants on different instances.

# Tracking

Track resolves the user's variant and hands an Event to the EventSink.
Sink failures are logged and counted in
reelmood_experiment_events_dropped_total, never returned.

# Analysis

Analyzer reads a MetricsStore. Significance runs a chi-square
goodness-of-fit test over unique users per variant. The CDF is the
closed form 1 - e^(-x/2) Σ_{i<k} (x/2)^i / i!, which is only exact for even
degrees of freedom, so results are marked Approximate.
*/
package experiment
