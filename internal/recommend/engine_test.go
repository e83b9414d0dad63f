// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelmood/internal/models"
	"github.com/tomtom215/reelmood/internal/mood"
)

type stubAnalyzer struct {
	analysis mood.Analysis
	err      error
	calls    int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string) (mood.Analysis, error) {
	s.calls++
	return s.analysis, s.err
}

func relevanceOnly() *Config {
	cfg := DefaultConfig()
	cfg.DiversityLambda = 1
	return cfg
}

func newTestEngine(t *testing.T, cfg *Config, analyzer MoodAnalyzer) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, analyzer, zerolog.Nop())
	require.NoError(t, err)
	return e
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DefaultLimit = 0
	_, err := NewEngine(cfg, nil, zerolog.Nop())
	require.Error(t, err)
}

func TestRecommend_ExplicitMoodSkipsAnalyzer(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{analysis: mood.Analysis{Mood: mood.Romantic}}
	e := newTestEngine(t, relevanceOnly(), analyzer)

	resp, err := e.Recommend(context.Background(), &Request{
		Text:  "I want love",
		Mood:  "Adventurous",
		Items: catalog(),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, analyzer.calls)
	assert.Equal(t, "adventurous", resp.Mood)
	assert.Equal(t, 1, resp.Candidates)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "2", resp.Recommendations[0].ID)
	assert.Equal(t, []string{"decade_2010s", "genre_action", "keyword_fury", "keyword_mad", "keyword_max", "keyword_road"},
		resp.Recommendations[0].Features)
}

func TestRecommend_TextUsesAnalyzer(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{analysis: mood.Analysis{Mood: mood.Romantic, Sentiment: 0.4, Intensity: 0.6}}
	e := newTestEngine(t, relevanceOnly(), analyzer)

	resp, err := e.Recommend(context.Background(), &Request{
		Text:        "date night",
		Items:       catalog(),
		Preferences: &models.PreferenceProfile{Genres: map[string]float64{"romance": 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, "romantic", resp.Mood)
	assert.InDelta(t, 0.4, resp.Sentiment, 1e-12)
	assert.InDelta(t, 0.6, resp.Intensity, 1e-12)
	assert.Equal(t, []string{"4", "3"}, recIDs(resp.Recommendations))
	// romance 1, drama 0 averaged over two genres
	assert.InDelta(t, 0.2, resp.Recommendations[0].PreferenceScore, 1e-12)
}

func TestRecommend_DefaultsToHappy(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, relevanceOnly(), nil)

	resp, err := e.Recommend(context.Background(), &Request{Text: "anything", Items: catalog()})
	require.NoError(t, err)
	assert.Equal(t, "happy", resp.Mood)
	assert.Equal(t, []string{"1", "3"}, recIDs(resp.Recommendations))
}

func TestRecommend_UnknownMoodActsAsHappy(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, relevanceOnly(), nil)

	happy, err := e.Recommend(context.Background(), &Request{Mood: "happy", Items: catalog()})
	require.NoError(t, err)
	unknown, err := e.Recommend(context.Background(), &Request{Mood: "unknown_mood", Items: catalog()})
	require.NoError(t, err)

	assert.Equal(t, "happy", unknown.Mood)
	assert.Equal(t, recIDs(happy.Recommendations), recIDs(unknown.Recommendations))
	assert.NotEmpty(t, unknown.Recommendations)
}

func TestRecommend_AnalyzerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	e := newTestEngine(t, nil, &stubAnalyzer{err: boom})

	_, err := e.Recommend(context.Background(), &Request{Text: "hi", Items: catalog()})
	require.ErrorIs(t, err, boom)
}

func TestRecommend_InvalidRequest(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)

	_, err := e.Recommend(context.Background(), &Request{Mood: strings.Repeat("x", 65)})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = e.Recommend(context.Background(), &Request{Limit: -1})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRecommend_SimilarityReorders(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, relevanceOnly(), nil)

	reference := vec("x", 5.0, "y", 1.0)
	resp, err := e.Recommend(context.Background(), &Request{
		Mood:      "romantic",
		Items:     catalog(),
		Reference: reference,
		ItemRatings: map[string]models.RatingVector{
			"3": vec("x", 5.0, "y", 1.0),
			"4": vec("z", 4.0),
		},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"3", "4"}, recIDs(resp.Recommendations))
	assert.InDelta(t, 1.0, resp.Recommendations[0].SimilarityScore, 1e-9)
	assert.InDelta(t, 0.5, resp.Recommendations[0].Score, 1e-9)
	assert.Zero(t, resp.Recommendations[1].SimilarityScore)
}

func TestRecommend_Limit(t *testing.T) {
	t.Parallel()

	items := make([]models.MediaItem, 30)
	for i := range items {
		items[i] = models.MediaItem{ID: string(rune('a' + i)), Genres: []string{"Comedy"}}
	}

	cfg := relevanceOnly()
	cfg.DefaultLimit = 5
	cfg.MaxLimit = 10
	e := newTestEngine(t, cfg, nil)

	resp, err := e.Recommend(context.Background(), &Request{Items: items})
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 5)
	assert.Equal(t, 30, resp.Candidates)

	resp, err = e.Recommend(context.Background(), &Request{Items: items, Limit: 50})
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 10)

	resp, err = e.Recommend(context.Background(), &Request{Items: items, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 3)
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)

	resp, err := e.Recommend(context.Background(), &Request{Mood: "relaxed"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Recommendations)
	assert.Empty(t, resp.Recommendations)
}
