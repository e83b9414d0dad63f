// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource draws values uniformly from [0, 1).
type RandomSource interface {
	Float64() float64
}

// LockedRandom is a PCG generator guarded by a mutex.
type LockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a seeded source. Seed 0 seeds from the clock.
func NewRandomSource(seed uint64) *LockedRandom {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // non-negative clock reading
	}
	return &LockedRandom{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // variant assignment is not security sensitive
	}
}

// Float64 returns a pseudo-random number in [0, 1).
func (r *LockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
