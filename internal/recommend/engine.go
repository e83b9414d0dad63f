// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/metrics"
	"github.com/tomtom215/reelmood/internal/mood"
	"github.com/tomtom215/reelmood/internal/validation"
)

// MoodAnalyzer resolves free-form text to a mood. *mood.Classifier implements it.
type MoodAnalyzer interface {
	Analyze(ctx context.Context, text string) (mood.Analysis, error)
}

// Engine turns a mood, a catalog and a user profile into ranked
// recommendations. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	config   *Config
	analyzer MoodAnalyzer
	logger   zerolog.Logger
}

// NewEngine creates a recommendation engine. A nil cfg selects DefaultConfig.
// analyzer may be nil, in which case text is ignored and requests without an
// explicit mood fall back to happy.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, analyzer MoodAnalyzer, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:   cfg.Clone(),
		analyzer: analyzer,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend ranks req.Items for the resolved mood.
//
// Items that do not suit the mood are dropped. The rest are scored by
// PreferenceScore, plus SimilarityWeight times the cosine similarity between
// req.Reference and the item's entry in req.ItemRatings when both exist, and
// the final list is selected with Diversify.
func (e *Engine) Recommend(ctx context.Context, req *Request) (*Response, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	resp, m, err := e.resolveMood(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates := FilterByMood(req.Items, m)
	scored := ApplyUserPreferences(candidates, req.Preferences)

	recs := make([]Recommendation, len(scored))
	for i := range scored {
		recs[i] = Recommendation{
			MediaItem:       scored[i].MediaItem,
			Score:           scored[i].Score,
			PreferenceScore: scored[i].Score,
		}
	}

	if len(req.Reference) > 0 && len(req.ItemRatings) > 0 && e.config.SimilarityWeight > 0 {
		for i := range recs {
			ratings, ok := req.ItemRatings[recs[i].ID]
			if !ok {
				continue
			}
			recs[i].SimilarityScore = CosineSimilarity(req.Reference, ratings)
			recs[i].Score += e.config.SimilarityWeight * recs[i].SimilarityScore
		}
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Score > recs[j].Score
		})
	}

	features := make([]FeatureSet, len(recs))
	for i := range recs {
		features[i] = ExtractFeatures(&recs[i].MediaItem)
		recs[i].Features = features[i].Sorted()
	}

	resp.Candidates = len(candidates)
	resp.Recommendations = Diversify(recs, features, e.config.DiversityLambda, e.limit(req.Limit))

	metrics.RecordRecommendation(resp.Mood, resp.Candidates)
	e.logger.Debug().
		Str("mood", resp.Mood).
		Int("catalog", len(req.Items)).
		Int("candidates", resp.Candidates).
		Int("returned", len(resp.Recommendations)).
		Msg("Recommendations computed")

	return resp, nil
}

// resolveMood picks the request mood: an explicit name wins, then analyzed
// text, then mood.Happy.
func (e *Engine) resolveMood(ctx context.Context, req *Request) (*Response, mood.Mood, error) {
	if req.Mood != "" {
		m, _ := mood.Parse(req.Mood)
		return &Response{Mood: m.String()}, m, nil
	}

	if req.Text != "" && e.analyzer != nil {
		a, err := e.analyzer.Analyze(ctx, req.Text)
		if err != nil {
			return nil, 0, fmt.Errorf("analyze mood: %w", err)
		}
		return &Response{Mood: a.Mood.String(), Sentiment: a.Sentiment, Intensity: a.Intensity}, a.Mood, nil
	}

	return &Response{Mood: mood.Happy.String()}, mood.Happy, nil
}

func (e *Engine) limit(requested int) int {
	if requested <= 0 {
		return e.config.DefaultLimit
	}
	if requested > e.config.MaxLimit {
		return e.config.MaxLimit
	}
	return requested
}
