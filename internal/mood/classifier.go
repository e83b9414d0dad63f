// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

// Package mood infers a discrete mood and its intensity from free text.
//
// Classification delegates sentiment scoring and tokenization to a
// TextAnalyzer, then scores each mood by how many tokens contain one of its
// keywords, weighted by (sentiment + 1). The highest score wins and ties go
// to the mood declared first, so an empty token list yields Happy.
package mood

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/cache"
	"github.com/tomtom215/reelmood/internal/metrics"
)

// intensifierWeight is added to intensity for each intensifier token.
const intensifierWeight = 0.2

var intensifiers = map[string]struct{}{
	"very":       {},
	"extremely":  {},
	"really":     {},
	"totally":    {},
	"absolutely": {},
}

// TextAnalysis is the output of a TextAnalyzer.
type TextAnalysis struct {
	// Sentiment is conventionally in [-1, 1].
	Sentiment float64

	// Tokens are lowercase words in text order.
	Tokens []string
}

// TextAnalyzer scores sentiment and tokenizes text.
type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, text string) (TextAnalysis, error)
}

// Analysis is the mood derived from a piece of text.
type Analysis struct {
	Sentiment float64 `json:"sentiment"`
	Mood      Mood    `json:"mood"`
	Intensity float64 `json:"intensity"`
}

// Config controls analysis memoization.
type Config struct {
	// CacheSize is the maximum number of memoized texts. Zero disables caching.
	CacheSize int

	// CacheTTL is how long a memoized analysis stays valid.
	CacheTTL time.Duration
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		CacheSize: 1000,
		CacheTTL:  10 * time.Minute,
	}
}

// Classifier turns text into an Analysis.
type Classifier struct {
	analyzer TextAnalyzer
	cache    *cache.LRU[Analysis]
	logger   zerolog.Logger
}

// NewClassifier creates a classifier backed by analyzer.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewClassifier(analyzer TextAnalyzer, cfg Config, logger zerolog.Logger) (*Classifier, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("mood classifier: text analyzer is required")
	}

	c := &Classifier{
		analyzer: analyzer,
		logger:   logger.With().Str("component", "mood").Logger(),
	}
	if cfg.CacheSize > 0 {
		c.cache = cache.NewLRU[Analysis](cfg.CacheSize, cfg.CacheTTL)
	}
	return c, nil
}

// Analyze classifies text. Analyzer failures are returned wrapped.
func (c *Classifier) Analyze(ctx context.Context, text string) (Analysis, error) {
	if c.cache != nil {
		if a, ok := c.cache.Get(text); ok {
			metrics.RecordMoodCache(true)
			return a, nil
		}
		metrics.RecordMoodCache(false)
	}

	ta, err := c.analyzer.AnalyzeText(ctx, text)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze text: %w", err)
	}

	a := Classify(ta)
	metrics.RecordMoodClassification(a.Mood.String())
	c.logger.Debug().
		Str("mood", a.Mood.String()).
		Float64("sentiment", a.Sentiment).
		Float64("intensity", a.Intensity).
		Int("tokens", len(ta.Tokens)).
		Msg("mood classified")

	if c.cache != nil {
		c.cache.Add(text, a)
	}
	return a, nil
}

// Classify derives an Analysis from an already analyzed text.
func Classify(ta TextAnalysis) Analysis {
	return Analysis{
		Sentiment: ta.Sentiment,
		Mood:      Infer(ta.Tokens, ta.Sentiment),
		Intensity: Intensity(ta.Tokens, ta.Sentiment),
	}
}

// Infer returns the best-scoring mood for tokens.
func Infer(tokens []string, sentiment float64) Mood {
	best := Happy
	bestScore := Score(best, tokens, sentiment)
	for _, m := range All()[1:] {
		if s := Score(m, tokens, sentiment); s > bestScore {
			best, bestScore = m, s
		}
	}
	return best
}

// Score is the number of tokens containing any keyword of m, multiplied by
// (sentiment + 1).
func Score(m Mood, tokens []string, sentiment float64) float64 {
	keywords := m.Keywords()
	matches := 0
	for _, tok := range tokens {
		for _, kw := range keywords {
			if strings.Contains(tok, kw) {
				matches++
				break
			}
		}
	}
	return float64(matches) * (sentiment + 1)
}

// Intensity is |sentiment| plus 0.2 per intensifier token, capped at 1.
func Intensity(tokens []string, sentiment float64) float64 {
	count := 0
	for _, tok := range tokens {
		if _, ok := intensifiers[tok]; ok {
			count++
		}
	}
	return math.Min(1, math.Abs(sentiment)+intensifierWeight*float64(count))
}
