// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package models

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// MediaItem is a candidate title for filtering and ranking.
// Zero Year and zero Rating mean the value is unknown.
type MediaItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Year        int       `json:"year,omitempty"`
	Genres      GenreList `json:"genres,omitempty"`
	Description string    `json:"description,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Poster      string    `json:"poster,omitempty"`
}

// GenreList is a list of genre names. It decodes from a JSON array or from a
// comma-separated string such as "Crime, Drama".
type GenreList []string

// UnmarshalJSON accepts an array of strings, a comma-separated string or null.
func (g *GenreList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*g = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("genres: %w", err)
		}
		*g = ParseGenres(s)
		return nil
	default:
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("genres must be a string or a list of strings: %w", err)
		}
		*g = list
		return nil
	}
}

// ParseGenres splits a comma-separated genre string, trimming each entry
// and dropping empty ones.
func ParseGenres(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// Decade returns the decade the item was released in (1994 -> 1990).
// The boolean is false when the year is unknown.
func (m *MediaItem) Decade() (int, bool) {
	if m.Year == 0 {
		return 0, false
	}
	return (m.Year / 10) * 10, true
}

// RatingStyle summarizes how a user tends to rate content.
type RatingStyle struct {
	Average float64 `json:"average"`
}

// PreferenceProfile holds caller-supplied taste weights.
// Genre keys are lowercase genre names, era keys have the form "1990s".
type PreferenceProfile struct {
	Genres      map[string]float64 `json:"genres,omitempty"`
	Eras        map[string]float64 `json:"eras,omitempty"`
	RatingStyle *RatingStyle       `json:"rating_style,omitempty"`
}

// Rating is one (media, value) entry of a RatingVector.
type Rating struct {
	MediaID string  `json:"media_id"`
	Value   float64 `json:"value"`
}

// RatingVector is the rating signal of one user or one item.
type RatingVector []Rating
