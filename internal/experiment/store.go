// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import (
	"context"
	"sync"
)

// AssignmentStore persists sticky variant assignments. Implementations must
// be safe for concurrent use. Put is only called for keys Get reported missing.
type AssignmentStore interface {
	Get(ctx context.Context, userID, experimentName string) (variant string, ok bool, err error)
	Put(ctx context.Context, userID, experimentName, variant string) error
}

// AssignmentCounter is implemented by stores that can count the assignments
// held for one experiment.
type AssignmentCounter interface {
	Count(ctx context.Context, experimentName string) (int, error)
}

type assignmentKey struct {
	userID     string
	experiment string
}

// MemoryStore keeps assignments in process memory for the lifetime of the store.
type MemoryStore struct {
	mu          sync.RWMutex
	assignments map[assignmentKey]string
}

// NewMemoryStore creates an empty in-memory assignment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{assignments: make(map[assignmentKey]string)}
}

// Get returns the stored variant for the user and experiment.
func (s *MemoryStore) Get(_ context.Context, userID, experimentName string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	variant, ok := s.assignments[assignmentKey{userID: userID, experiment: experimentName}]
	return variant, ok, nil
}

// Put stores a variant. An existing assignment is never overwritten.
func (s *MemoryStore) Put(_ context.Context, userID, experimentName, variant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentKey{userID: userID, experiment: experimentName}
	if _, exists := s.assignments[key]; !exists {
		s.assignments[key] = variant
	}
	return nil
}

// Count returns the number of stored assignments for an experiment.
func (s *MemoryStore) Count(_ context.Context, experimentName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.assignments {
		if key.experiment == experimentName {
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored assignments.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assignments)
}
