// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomtom215/reelmood/internal/models"
)

func diversifyFixture() ([]Recommendation, []FeatureSet) {
	recs := []Recommendation{
		{MediaItem: models.MediaItem{ID: "comedy-1"}, Score: 1.0},
		{MediaItem: models.MediaItem{ID: "comedy-2"}, Score: 0.95},
		{MediaItem: models.MediaItem{ID: "doc-1"}, Score: 0.7},
	}
	features := []FeatureSet{
		{"genre_comedy": {}, "decade_2010s": {}},
		{"genre_comedy": {}, "decade_2010s": {}},
		{"genre_documentary": {}, "decade_1990s": {}},
	}
	return recs, features
}

func recIDs(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i := range recs {
		out[i] = recs[i].ID
	}
	return out
}

func TestDiversify_PureRelevanceKeepsOrder(t *testing.T) {
	t.Parallel()

	recs, features := diversifyFixture()
	assert.Equal(t, []string{"comedy-1", "comedy-2"}, recIDs(Diversify(recs, features, 1, 2)))
}

func TestDiversify_PromotesDissimilarItems(t *testing.T) {
	t.Parallel()

	recs, features := diversifyFixture()
	// comedy-2: 0.5*0.95 - 0.5*1 = -0.025; doc-1: 0.5*0.7 - 0 = 0.35
	got := Diversify(recs, features, 0.5, 3)
	assert.Equal(t, []string{"comedy-1", "doc-1", "comedy-2"}, recIDs(got))
}

func TestDiversify_Bounds(t *testing.T) {
	t.Parallel()

	recs, features := diversifyFixture()

	assert.Empty(t, Diversify(recs, features, 0.5, 0))
	assert.Empty(t, Diversify(nil, nil, 0.5, 10))
	assert.Len(t, Diversify(recs, features, 0.5, 10), 3)
	// Mismatched feature slice falls back to relevance order.
	assert.Equal(t, []string{"comedy-1"}, recIDs(Diversify(recs, nil, 0.5, 1)))
}
