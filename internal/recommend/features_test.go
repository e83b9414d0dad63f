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

func TestExtractFeatures(t *testing.T) {
	t.Parallel()

	item := &models.MediaItem{
		Title:  "The Shawshank Redemption",
		Year:   1994,
		Genres: models.ParseGenres("Crime, Drama"),
	}

	got := ExtractFeatures(item)

	assert.Equal(t, []string{
		"decade_1990s",
		"genre_crime",
		"genre_drama",
		"keyword_redemption",
		"keyword_shawshank",
	}, got.Sorted())
	assert.False(t, got.Has("keyword_the"))
}

func TestExtractFeatures_EdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		item models.MediaItem
		want []string
	}{
		{"empty item", models.MediaItem{}, []string{}},
		{"unknown year", models.MediaItem{Title: "Heat"}, []string{"keyword_heat"}},
		{"short and stop words", models.MediaItem{Title: "Up in the Air", Year: 2009}, []string{"decade_2000s", "keyword_air"}},
		{"punctuation", models.MediaItem{Title: "Spider-Man: No Way Home"}, []string{"keyword_home", "keyword_man", "keyword_spider", "keyword_way"}},
		{"duplicate genres", models.MediaItem{Genres: []string{"Drama", " drama "}}, []string{"genre_drama"}},
		{"repeated title word", models.MediaItem{Title: "Tora! Tora! Tora!"}, []string{"keyword_tora"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractFeatures(&tt.item).Sorted())
		})
	}
}
