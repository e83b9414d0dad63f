// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package mood

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_DeclarationOrder(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, 6)
	for _, m := range All() {
		names = append(names, m.String())
	}
	assert.Equal(t, []string{"happy", "relaxed", "adventurous", "romantic", "thoughtful", "nostalgic"}, names)
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Mood
		wantOK bool
	}{
		{"happy", Happy, true},
		{"Romantic", Romantic, true},
		{" nostalgic ", Nostalgic, true},
		{"unknown_mood", Happy, false},
		{"", Happy, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestUnknownMoodUsesHappyTables(t *testing.T) {
	t.Parallel()

	unknown := Mood(42)
	assert.False(t, unknown.Valid())
	assert.Equal(t, "unknown", unknown.String())
	assert.Equal(t, Happy.Genres(), unknown.Genres())
	assert.Equal(t, Happy.DescriptionKeywords(), unknown.DescriptionKeywords())
	assert.Equal(t, Happy.Keywords(), Mood(-1).Keywords())
}

func TestEveryMoodHasTables(t *testing.T) {
	t.Parallel()

	for _, m := range All() {
		assert.NotEmpty(t, m.Keywords(), m.String())
		assert.NotEmpty(t, m.Genres(), m.String())
		assert.NotEmpty(t, m.DescriptionKeywords(), m.String())
	}
}

func TestMoodJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Analysis{Mood: Adventurous, Sentiment: 0.3, Intensity: 0.3})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mood":"adventurous"`)

	var a Analysis
	require.NoError(t, json.Unmarshal([]byte(`{"mood":"thoughtful"}`), &a))
	assert.Equal(t, Thoughtful, a.Mood)

	require.NoError(t, json.Unmarshal([]byte(`{"mood":"grumpy"}`), &a))
	assert.Equal(t, Happy, a.Mood)
}
