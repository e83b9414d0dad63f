// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// fixedRandom returns its values in order, repeating the last one.
type fixedRandom struct {
	mu     sync.Mutex
	values []float64
	calls  int
}

func (f *fixedRandom) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.values) {
		i = len(f.values) - 1
	}
	f.calls++
	return f.values[i]
}

type recordingSink struct {
	mu          sync.Mutex
	events      []Event
	assignments []Assignment
	eventErr    error
	assignErr   error
}

func (s *recordingSink) RecordEvent(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventErr != nil {
		return s.eventErr
	}
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) RecordAssignment(_ context.Context, a Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignErr != nil {
		return s.assignErr
	}
	s.assignments = append(s.assignments, a)
	return nil
}

type failingStore struct {
	getErr error
	putErr error
}

func (f failingStore) Get(context.Context, string, string) (string, bool, error) {
	return "", false, f.getErr
}

func (f failingStore) Put(context.Context, string, string, string) error {
	return f.putErr
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(opts Options) *Manager {
	opts.Logger = zerolog.Nop()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewManager(opts)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{})

	tests := []struct {
		name     string
		expName  string
		variants []string
		weights  []float64
	}{
		{"empty name", "", []string{"a"}, nil},
		{"no variants", "exp", nil, nil},
		{"weight count mismatch", "exp", []string{"a", "b"}, []float64{1}},
		{"negative weight", "exp", []string{"a", "b"}, []float64{-0.5, 1.5}},
		{"weight above one", "exp", []string{"a", "b"}, []float64{1.5, 0}},
		{"NaN weight", "exp", []string{"a", "b"}, []float64{math.NaN(), 0.5}},
		{"infinite weight", "exp", []string{"a", "b"}, []float64{math.Inf(1), 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Register(tt.expName, tt.variants, tt.weights...)
			require.ErrorIs(t, err, ErrInvalidExperiment)
		})
	}
}

func TestRegister_UniformWeightsAndCopy(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{})
	variants := []string{"a", "b", "c", "d"}
	require.NoError(t, m.Register("exp", variants))

	variants[0] = "mutated"

	exp, ok := m.Experiment("exp")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c", "d"}, exp.Variants)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, exp.Weights)

	exp.Variants[1] = "mutated"
	again, _ := m.Experiment("exp")
	assert.Equal(t, "b", again.Variants[1])
}

func TestRegister_ReplacesDefinition(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{})
	require.NoError(t, m.Register("exp", []string{"a", "b"}))
	require.NoError(t, m.Register("exp", []string{"x"}))

	exp, ok := m.Experiment("exp")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, exp.Variants)
	assert.Len(t, m.Experiments(), 1)
}

func TestExperiments_SortedByName(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{})
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, m.Register(name, []string{"a"}))
	}

	names := make([]string, 0, 3)
	for _, exp := range m.Experiments() {
		names = append(names, exp.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestRegisterDefinitions(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{})
	err := m.RegisterDefinitions([]Definition{
		{Name: "button-color", Variants: []string{"red", "blue"}, Weights: []float64{0.3, 0.7}},
		{Name: "layout", Variants: []string{"grid"}},
	})
	require.NoError(t, err)
	assert.Len(t, m.Experiments(), 2)

	err = m.RegisterDefinitions([]Definition{{Name: "bad name", Variants: []string{"a"}}})
	require.ErrorIs(t, err, ErrInvalidExperiment)

	err = m.RegisterDefinitions([]Definition{{Name: "dup", Variants: []string{"a", "a"}}})
	require.ErrorIs(t, err, ErrInvalidExperiment)

	err = m.RegisterDefinitions([]Definition{{Name: "mismatch", Variants: []string{"a", "b"}, Weights: []float64{1}}})
	require.ErrorIs(t, err, ErrInvalidExperiment)
}

func TestAssign_CumulativeWeights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		weights []float64
		draw    float64
		want    string
	}{
		{"first bucket", []float64{0.2, 0.3, 0.5}, 0.1, "a"},
		{"boundary goes to next", []float64{0.2, 0.3, 0.5}, 0.2, "b"},
		{"last bucket", []float64{0.2, 0.3, 0.5}, 0.99, "c"},
		{"under-weighted falls back to last", []float64{0.1, 0.1, 0.1}, 0.5, "c"},
		{"zero weight skipped", []float64{0, 1, 0}, 0, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newTestManager(Options{RandomSource: &fixedRandom{values: []float64{tt.draw}}})
			require.NoError(t, m.Register("exp", []string{"a", "b", "c"}, tt.weights...))

			got, err := m.Assign(context.Background(), "user", "exp")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssign_Sticky(t *testing.T) {
	t.Parallel()

	rng := &fixedRandom{values: []float64{0.1, 0.9, 0.9, 0.9}}
	m := newTestManager(Options{RandomSource: rng})
	require.NoError(t, m.Register("exp", []string{"a", "b"}))

	first, err := m.Assign(context.Background(), "user", "exp")
	require.NoError(t, err)
	assert.Equal(t, "a", first)

	for i := 0; i < 3; i++ {
		again, err := m.Assign(context.Background(), "user", "exp")
		require.NoError(t, err)
		assert.Equal(t, "a", again)
	}
	assert.Equal(t, 1, rng.calls)
}

func TestAssign_StickyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := newTestManager(Options{RandomSource: NewRandomSource(rapid.Uint64Min(1).Draw(t, "seed"))})
		expNames := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}`), 1, 4, rapid.ID[string]).Draw(t, "experiments")
		for _, name := range expNames {
			variants := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,4}`), 1, 5, rapid.ID[string]).Draw(t, "variants")
			if err := m.Register(name, variants); err != nil {
				t.Fatalf("register: %v", err)
			}
		}

		first := make(map[string]string)
		ops := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) [2]string {
			return [2]string{
				rapid.StringMatching(`u[0-9]{1,2}`).Draw(t, "user"),
				rapid.SampledFrom(expNames).Draw(t, "experiment"),
			}
		}), 1, 50).Draw(t, "ops")

		for _, op := range ops {
			got, err := m.Assign(context.Background(), op[0], op[1])
			if err != nil {
				t.Fatalf("assign: %v", err)
			}
			key := op[0] + "/" + op[1]
			if prev, ok := first[key]; ok && prev != got {
				t.Fatalf("%s reassigned from %q to %q", key, prev, got)
			}
			first[key] = got
		}
	})
}

func TestAssign_EvenSplit(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{RandomSource: NewRandomSource(42)})
	require.NoError(t, m.Register("split", []string{"control", "treatment"}, 0.5, 0.5))

	const users = 10000
	counts := make(map[string]int)
	for i := 0; i < users; i++ {
		v, err := m.Assign(context.Background(), fmt.Sprintf("user-%d", i), "split")
		require.NoError(t, err)
		counts[v]++
	}

	ratio := float64(counts["control"]) / users
	assert.InDelta(t, 0.5, ratio, 0.03)
}

func TestAssign_ConcurrentFirstAssignmentsAgree(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{RandomSource: NewRandomSource(7)})
	require.NoError(t, m.Register("exp", []string{"a", "b", "c", "d"}))

	const workers = 32
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Assign(context.Background(), "same-user", "exp")
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, results[0], v)
	}
}

func TestAssign_UnknownExperiment(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{})
	_, err := m.Assign(context.Background(), "user", "missing")
	require.ErrorIs(t, err, ErrExperimentNotFound)
}

func TestAssign_StoreErrors(t *testing.T) {
	t.Parallel()

	getErr := errors.New("get failed")
	m := newTestManager(Options{AssignmentStore: failingStore{getErr: getErr}})
	require.NoError(t, m.Register("exp", []string{"a"}))
	_, err := m.Assign(context.Background(), "user", "exp")
	require.ErrorIs(t, err, getErr)

	putErr := errors.New("put failed")
	m = newTestManager(Options{AssignmentStore: failingStore{putErr: putErr}})
	require.NoError(t, m.Register("exp", []string{"a"}))
	_, err = m.Assign(context.Background(), "user", "exp")
	require.ErrorIs(t, err, putErr)
}

func TestAssign_RecordsNewAssignmentsOnce(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	m := newTestManager(Options{AssignmentRecorder: sink, RandomSource: &fixedRandom{values: []float64{0.7}}})
	require.NoError(t, m.Register("exp", []string{"a", "b"}))

	for i := 0; i < 3; i++ {
		_, err := m.Assign(context.Background(), "user", "exp")
		require.NoError(t, err)
	}

	require.Len(t, sink.assignments, 1)
	assert.Equal(t, Assignment{ExperimentName: "exp", Variant: "b", UserID: "user", AssignedAt: fixedNow}, sink.assignments[0])
}

func TestAssign_RecorderErrorIsIgnored(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{assignErr: errors.New("down")}
	m := newTestManager(Options{AssignmentRecorder: sink})
	require.NoError(t, m.Register("exp", []string{"a"}))

	got, err := m.Assign(context.Background(), "user", "exp")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestTrack(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	m := newTestManager(Options{EventSink: sink, RandomSource: &fixedRandom{values: []float64{0.1}}})
	require.NoError(t, m.Register("exp", []string{"a", "b"}))

	require.NoError(t, m.Track(context.Background(), "user", "exp", EventTimeSpent, 42.5))
	require.NoError(t, m.TrackDefault(context.Background(), "user", "exp", EventConversion))

	require.Len(t, sink.events, 2)
	first := sink.events[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "exp", first.ExperimentName)
	assert.Equal(t, "a", first.Variant)
	assert.Equal(t, "user", first.UserID)
	assert.Equal(t, EventTimeSpent, first.EventName)
	assert.InDelta(t, 42.5, first.Value, 1e-12)
	assert.Equal(t, fixedNow, first.Timestamp)

	assert.InDelta(t, 1.0, sink.events[1].Value, 1e-12)
	assert.NotEqual(t, first.ID, sink.events[1].ID)
}

func TestTrack_UnknownExperiment(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	m := newTestManager(Options{EventSink: sink})
	err := m.Track(context.Background(), "user", "missing", EventConversion, 1)
	require.ErrorIs(t, err, ErrExperimentNotFound)
	assert.Empty(t, sink.events)
}

func TestTrack_SinkErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{eventErr: errors.New("queue full")}
	m := newTestManager(Options{EventSink: sink})
	require.NoError(t, m.Register("exp", []string{"a"}))

	require.NoError(t, m.TrackDefault(context.Background(), "user", "exp", EventConversion))
}

func TestTrack_NoSink(t *testing.T) {
	t.Parallel()

	m := newTestManager(Options{})
	require.NoError(t, m.Register("exp", []string{"a"}))
	require.NoError(t, m.TrackDefault(context.Background(), "user", "exp", EventConversion))

	v, ok, err := m.store.Get(context.Background(), "user", "exp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}
