// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/metrics"
	"github.com/tomtom215/reelmood/internal/validation"
)

// weightTolerance is how far a weight sum may drift from 1 before Register warns.
const weightTolerance = 1e-9

// Options configures a Manager. Nil collaborators get defaults: an in-memory
// store, a clock-seeded random source, and no sink or recorder.
type Options struct {
	AssignmentStore    AssignmentStore
	RandomSource       RandomSource
	EventSink          EventSink
	AssignmentRecorder AssignmentRecorder
	Logger             zerolog.Logger

	// Now overrides the clock used for event and assignment timestamps.
	Now func() time.Time
}

// Manager registers experiments, assigns users to variants and tracks events.
// It is safe for concurrent use.
type Manager struct {
	expMu       sync.RWMutex
	experiments map[string]Experiment

	// assignMu serializes get, draw and put so concurrent first assignments
	// of one user agree.
	assignMu sync.Mutex

	store    AssignmentStore
	random   RandomSource
	sink     EventSink
	recorder AssignmentRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewManager creates a Manager.
//
//nolint:gocritic // Options carries a zerolog.Logger by value
func NewManager(opts Options) *Manager {
	m := &Manager{
		experiments: make(map[string]Experiment),
		store:       opts.AssignmentStore,
		random:      opts.RandomSource,
		sink:        opts.EventSink,
		recorder:    opts.AssignmentRecorder,
		logger:      opts.Logger.With().Str("component", "experiment").Logger(),
		now:         opts.Now,
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.random == nil {
		m.random = NewRandomSource(0)
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Register adds or replaces an experiment. With no weights every variant gets
// 1/len(variants). Weights that do not sum to 1 are accepted with a warning;
// draws past the cumulative total land on the last variant.
func (m *Manager) Register(name string, variants []string, weights ...float64) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidExperiment)
	}
	if len(variants) == 0 {
		return fmt.Errorf("%w: %s has no variants", ErrInvalidExperiment, name)
	}
	if len(weights) > 0 && len(weights) != len(variants) {
		return fmt.Errorf("%w: %s has %d weights for %d variants",
			ErrInvalidExperiment, name, len(weights), len(variants))
	}
	for i, w := range weights {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("%w: %s weight %d is %v, want a value in [0,1]",
				ErrInvalidExperiment, name, i, w)
		}
	}

	exp := Experiment{
		Name:     name,
		Variants: append([]string(nil), variants...),
	}
	if len(weights) == 0 {
		exp.Weights = make([]float64, len(variants))
		for i := range exp.Weights {
			exp.Weights[i] = 1 / float64(len(variants))
		}
	} else {
		exp.Weights = append([]float64(nil), weights...)
		var sum float64
		for _, w := range weights {
			sum += w
		}
		if math.Abs(sum-1) > weightTolerance {
			m.logger.Warn().
				Str("experiment", name).
				Float64("weight_sum", sum).
				Msg("Experiment weights do not sum to 1; excess draws go to the last variant")
		}
	}

	m.expMu.Lock()
	_, replaced := m.experiments[name]
	m.experiments[name] = exp
	count := len(m.experiments)
	m.expMu.Unlock()

	metrics.ExperimentsRegistered.Set(float64(count))
	m.logger.Info().
		Str("experiment", name).
		Strs("variants", exp.Variants).
		Bool("replaced", replaced).
		Msg("Experiment registered")
	return nil
}

// RegisterDefinitions validates and registers each definition in order,
// stopping at the first failure.
func (m *Manager) RegisterDefinitions(defs []Definition) error {
	for i := range defs {
		if verr := validation.ValidateStruct(&defs[i]); verr != nil {
			return fmt.Errorf("%w: experiments[%d]: %s", ErrInvalidExperiment, i, verr.Error())
		}
		if err := m.Register(defs[i].Name, defs[i].Variants, defs[i].Weights...); err != nil {
			return fmt.Errorf("experiments[%d]: %w", i, err)
		}
	}
	return nil
}

// Experiment returns a copy of a registered experiment.
func (m *Manager) Experiment(name string) (Experiment, bool) {
	m.expMu.RLock()
	defer m.expMu.RUnlock()

	exp, ok := m.experiments[name]
	if !ok {
		return Experiment{}, false
	}
	return exp.clone(), true
}

// Experiments returns copies of all registered experiments sorted by name.
func (m *Manager) Experiments() []Experiment {
	m.expMu.RLock()
	out := make([]Experiment, 0, len(m.experiments))
	for name := range m.experiments {
		exp := m.experiments[name]
		out = append(out, exp.clone())
	}
	m.expMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Assign returns the user's variant, drawing and persisting one on first use.
// A stored assignment is returned even if the experiment has since been
// replaced with different variants.
func (m *Manager) Assign(ctx context.Context, userID, experimentName string) (string, error) {
	m.assignMu.Lock()
	defer m.assignMu.Unlock()

	variant, ok, err := m.store.Get(ctx, userID, experimentName)
	if err != nil {
		return "", fmt.Errorf("get assignment: %w", err)
	}
	if ok {
		return variant, nil
	}

	exp, found := m.lookup(experimentName)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrExperimentNotFound, experimentName)
	}

	variant = selectVariant(&exp, m.random.Float64())
	if err := m.store.Put(ctx, userID, experimentName, variant); err != nil {
		return "", fmt.Errorf("put assignment: %w", err)
	}

	metrics.RecordAssignment(experimentName, variant)
	m.recordAssignment(ctx, Assignment{
		ExperimentName: experimentName,
		Variant:        variant,
		UserID:         userID,
		AssignedAt:     m.now().UTC(),
	})

	m.logger.Debug().
		Str("experiment", experimentName).
		Str("user_id", userID).
		Str("variant", variant).
		Msg("User assigned")
	return variant, nil
}

// Track records an event for the user's variant, assigning one if needed.
// Sink failures are logged and counted but not returned.
func (m *Manager) Track(ctx context.Context, userID, experimentName, eventName string, value float64) error {
	if _, found := m.lookup(experimentName); !found {
		return fmt.Errorf("%w: %s", ErrExperimentNotFound, experimentName)
	}

	variant, err := m.Assign(ctx, userID, experimentName)
	if err != nil {
		return err
	}

	if m.sink == nil {
		return nil
	}

	event := Event{
		ID:             uuid.NewString(),
		ExperimentName: experimentName,
		Variant:        variant,
		UserID:         userID,
		EventName:      eventName,
		Value:          value,
		Timestamp:      m.now().UTC(),
	}

	if err := m.sink.RecordEvent(ctx, event); err != nil {
		metrics.RecordEventDropped("sink_error")
		m.logger.Error().Err(err).
			Str("experiment", experimentName).
			Str("event", eventName).
			Str("user_id", userID).
			Msg("Failed to record experiment event")
		return nil
	}

	metrics.RecordEventTracked(experimentName, eventName)
	return nil
}

// TrackDefault tracks an event with value 1.
func (m *Manager) TrackDefault(ctx context.Context, userID, experimentName, eventName string) error {
	return m.Track(ctx, userID, experimentName, eventName, 1)
}

func (m *Manager) lookup(name string) (Experiment, bool) {
	m.expMu.RLock()
	defer m.expMu.RUnlock()
	exp, ok := m.experiments[name]
	return exp, ok
}

func (m *Manager) recordAssignment(ctx context.Context, a Assignment) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordAssignment(ctx, a); err != nil {
		m.logger.Warn().Err(err).
			Str("experiment", a.ExperimentName).
			Str("user_id", a.UserID).
			Msg("Failed to record assignment")
	}
}

// selectVariant walks the cumulative weights and returns the first variant
// whose running total exceeds r, or the last variant.
func selectVariant(exp *Experiment, r float64) string {
	var cumulative float64
	for i, w := range exp.Weights {
		cumulative += w
		if r < cumulative {
			return exp.Variants[i]
		}
	}
	return exp.Variants[len(exp.Variants)-1]
}
