// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"math"

	"github.com/tomtom215/reelmood/internal/models"
)

// CosineSimilarity compares two rating vectors keyed by media ID.
//
// The dot product only covers media IDs present in both vectors while each
// norm covers its full vector, so sparse overlap lowers the score. A zero
// norm on either side yields 0.
func CosineSimilarity(a, b models.RatingVector) float64 {
	normA := norm(a)
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}

	lookupB := lookup(b)

	var dot float64
	for id, va := range lookup(a) {
		if vb, ok := lookupB[id]; ok {
			dot += va * vb
		}
	}

	return dot / (normA * normB)
}

func lookup(v models.RatingVector) map[string]float64 {
	m := make(map[string]float64, len(v))
	for _, r := range v {
		m[r.MediaID] = r.Value
	}
	return m
}

func norm(v models.RatingVector) float64 {
	var sum float64
	for _, r := range v {
		sum += r.Value * r.Value
	}
	return math.Sqrt(sum)
}

// JaccardSimilarity is |a ∩ b| / |a ∪ b| over feature tags, 0 when both are empty.
func JaccardSimilarity(a, b FeatureSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for tag := range a {
		if _, ok := b[tag]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
