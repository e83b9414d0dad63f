// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmood/internal/models"
	"github.com/tomtom215/reelmood/internal/mood"
)

// Preference term weights. Skipped terms are not redistributed.
const (
	GenreWeight  = 0.4
	EraWeight    = 0.3
	RatingWeight = 0.3

	// ratingScale is the width of the rating scale used to normalize distance.
	ratingScale = 5.0
)

// ScoredItem is a media item with its preference score.
type ScoredItem struct {
	models.MediaItem
	Score float64 `json:"score"`
}

// FilterByMood keeps items whose genres or description suit m. Moods outside
// the enum behave like mood.Happy. Genre comparison is case-insensitive.
func FilterByMood(items []models.MediaItem, m mood.Mood) []models.MediaItem {
	genres := make(map[string]struct{}, len(m.Genres()))
	for _, g := range m.Genres() {
		genres[g] = struct{}{}
	}
	keywords := m.DescriptionKeywords()

	out := make([]models.MediaItem, 0, len(items))
	for i := range items {
		if matchesMood(&items[i], genres, keywords) {
			out = append(out, items[i])
		}
	}
	return out
}

func matchesMood(item *models.MediaItem, genres map[string]struct{}, keywords []string) bool {
	for _, g := range item.Genres {
		if _, ok := genres[strings.ToLower(strings.TrimSpace(g))]; ok {
			return true
		}
	}

	desc := strings.ToLower(item.Description)
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// ApplyUserPreferences scores every item against prefs and returns them
// sorted by descending score. Items with equal scores keep their input order.
func ApplyUserPreferences(items []models.MediaItem, prefs *models.PreferenceProfile) []ScoredItem {
	scored := make([]ScoredItem, len(items))
	for i := range items {
		scored[i] = ScoredItem{MediaItem: items[i], Score: PreferenceScore(&items[i], prefs)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// PreferenceScore is the sum of the genre, era and rating terms. Each term is
// included only when both the item and prefs carry the data it needs.
func PreferenceScore(item *models.MediaItem, prefs *models.PreferenceProfile) float64 {
	if prefs == nil {
		return 0
	}

	var score float64

	if len(item.Genres) > 0 && prefs.Genres != nil {
		var sum float64
		for _, g := range item.Genres {
			sum += prefs.Genres[strings.ToLower(strings.TrimSpace(g))]
		}
		score += GenreWeight * (sum / float64(len(item.Genres)))
	}

	if decade, ok := item.Decade(); ok && prefs.Eras != nil {
		score += EraWeight * prefs.Eras[strconv.Itoa(decade)+"s"]
	}

	if item.Rating != 0 && prefs.RatingStyle != nil {
		score += RatingWeight * (1 - math.Abs(item.Rating-prefs.RatingStyle.Average)/ratingScale)
	}

	return score
}
