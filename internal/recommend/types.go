// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"errors"

	"github.com/tomtom215/reelmood/internal/models"
)

// ErrInvalidRequest is returned when a recommendation request fails validation.
var ErrInvalidRequest = errors.New("invalid recommendation request")

// Request is the input to Engine.Recommend.
type Request struct {
	// Text is free-form text describing how the user feels. It is only
	// analyzed when Mood is empty.
	Text string `json:"text,omitempty" validate:"max=4096"`

	// Mood forces a mood by name and skips text analysis. Unknown names
	// resolve to happy.
	Mood string `json:"mood,omitempty" validate:"max=64"`

	// Items is the candidate catalog.
	Items []models.MediaItem `json:"items" validate:"max=10000"`

	// Preferences is the user's learned preference profile.
	Preferences *models.PreferenceProfile `json:"preferences,omitempty"`

	// Reference is the requesting user's rating vector. Together with
	// ItemRatings it adds a collaborative similarity term.
	Reference models.RatingVector `json:"reference,omitempty"`

	// ItemRatings maps media IDs to rating vectors of users who rated them.
	ItemRatings map[string]models.RatingVector `json:"item_ratings,omitempty"`

	// Limit caps the result size. Zero selects the configured default.
	Limit int `json:"limit,omitempty" validate:"gte=0,lte=500"`
}

// Recommendation is one ranked item in a Response.
type Recommendation struct {
	models.MediaItem
	Score           float64  `json:"score"`
	PreferenceScore float64  `json:"preference_score"`
	SimilarityScore float64  `json:"similarity_score"`
	Features        []string `json:"features"`
}

// Response is the result of Engine.Recommend.
type Response struct {
	Mood            string           `json:"mood"`
	Sentiment       float64          `json:"sentiment"`
	Intensity       float64          `json:"intensity"`
	Candidates      int              `json:"candidates"`
	Recommendations []Recommendation `json:"recommendations"`
}
