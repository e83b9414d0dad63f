// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package mood

import "strings"

// Mood is one of the six fixed mood categories. The declaration order is
// significant: it breaks ties during classification.
type Mood int

const (
	Happy Mood = iota
	Relaxed
	Adventurous
	Romantic
	Thoughtful
	Nostalgic
)

// profile carries the static tables attached to a mood.
type profile struct {
	name string

	// keywords drive classification from text tokens.
	keywords []string

	// genres and descriptionKeywords drive content filtering.
	genres              []string
	descriptionKeywords []string
}

var profiles = [...]profile{
	Happy: {
		name:                "happy",
		keywords:            []string{"happy", "joy", "excited", "fun", "cheerful"},
		genres:              []string{"comedy", "animation", "family", "musical"},
		descriptionKeywords: []string{"funny", "heartwarming", "uplifting", "joy", "laugh"},
	},
	Relaxed: {
		name:                "relaxed",
		keywords:            []string{"calm", "relax", "peaceful", "chill", "cozy"},
		genres:              []string{"documentary", "family", "music"},
		descriptionKeywords: []string{"gentle", "calm", "peaceful", "quiet", "soothing"},
	},
	Adventurous: {
		name:                "adventurous",
		keywords:            []string{"adventure", "thrill", "explore", "action", "bold"},
		genres:              []string{"action", "adventure", "sci-fi", "fantasy", "thriller"},
		descriptionKeywords: []string{"quest", "journey", "explore", "epic", "battle"},
	},
	Romantic: {
		name:                "romantic",
		keywords:            []string{"love", "romance", "romantic", "date", "passion"},
		genres:              []string{"romance", "drama"},
		descriptionKeywords: []string{"love", "relationship", "romantic", "passion", "heart"},
	},
	Thoughtful: {
		name:                "thoughtful",
		keywords:            []string{"think", "reflect", "deep", "curious", "ponder"},
		genres:              []string{"drama", "documentary", "mystery", "biography"},
		descriptionKeywords: []string{"philosoph", "mind", "identity", "meaning", "reflect"},
	},
	Nostalgic: {
		name:                "nostalgic",
		keywords:            []string{"nostalgia", "memory", "remember", "childhood", "classic"},
		genres:              []string{"classic", "history", "western", "animation"},
		descriptionKeywords: []string{"childhood", "memory", "remember", "past", "classic"},
	},
}

// All returns every mood in declaration order.
func All() []Mood {
	return []Mood{Happy, Relaxed, Adventurous, Romantic, Thoughtful, Nostalgic}
}

// Valid reports whether m is one of the declared moods.
func (m Mood) Valid() bool {
	return m >= Happy && m <= Nostalgic
}

// orDefault maps anything outside the enum to Happy.
func (m Mood) orDefault() Mood {
	if !m.Valid() {
		return Happy
	}
	return m
}

// String returns the lowercase mood name.
func (m Mood) String() string {
	if !m.Valid() {
		return "unknown"
	}
	return profiles[m].name
}

// Keywords returns the classification keywords for m.
func (m Mood) Keywords() []string {
	return profiles[m.orDefault()].keywords
}

// Genres returns the lowercase genres that suit m. Unknown moods use Happy.
func (m Mood) Genres() []string {
	return profiles[m.orDefault()].genres
}

// DescriptionKeywords returns the description substrings that suit m.
// Unknown moods use Happy.
func (m Mood) DescriptionKeywords() []string {
	return profiles[m.orDefault()].descriptionKeywords
}

// Parse resolves a mood name case-insensitively. Unrecognized names return
// Happy and false so callers can still filter with the default mood.
func Parse(s string) (Mood, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range All() {
		if profiles[m].name == name {
			return m, true
		}
	}
	return Happy, false
}

// MarshalText implements encoding.TextMarshaler.
func (m Mood) MarshalText() ([]byte, error) {
	return []byte(m.orDefault().String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to Happy.
func (m *Mood) UnmarshalText(b []byte) error {
	*m, _ = Parse(string(b))
	return nil
}
