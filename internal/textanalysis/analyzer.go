// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

// Package textanalysis is the default text analyzer for mood classification.
// Tokenization uses the bleve "simple" analyzer (letter tokenizer plus
// lowercase filter). Sentiment is scored against an AFINN-style lexicon,
// averaged over the scored words and scaled into [-1, 1].
package textanalysis

import (
	"context"
	"fmt"
	"math"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/tomtom215/reelmood/internal/mood"
)

// maxWordScore is the largest magnitude a lexicon entry may carry.
const maxWordScore = 5.0

// Analyzer implements mood.TextAnalyzer.
type Analyzer struct {
	mapping  *mapping.IndexMappingImpl
	analyzer string
	lexicon  map[string]float64
}

var _ mood.TextAnalyzer = (*Analyzer)(nil)

// New creates an analyzer. Entries in extra override or extend the built-in
// lexicon; scores outside [-5, 5] are clamped.
func New(extra map[string]float64) *Analyzer {
	lex := make(map[string]float64, len(defaultLexicon)+len(extra))
	for w, s := range defaultLexicon {
		lex[w] = s
	}
	for w, s := range extra {
		lex[w] = math.Max(-maxWordScore, math.Min(maxWordScore, s))
	}

	return &Analyzer{
		mapping:  bleve.NewIndexMapping(),
		analyzer: simple.Name,
		lexicon:  lex,
	}
}

// AnalyzeText tokenizes text and scores its sentiment.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (mood.TextAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return mood.TextAnalysis{}, err
	}

	stream, err := a.mapping.AnalyzeText(a.analyzer, []byte(text))
	if err != nil {
		return mood.TextAnalysis{}, fmt.Errorf("tokenize: %w", err)
	}

	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, string(tok.Term))
	}

	return mood.TextAnalysis{
		Sentiment: a.sentiment(tokens),
		Tokens:    tokens,
	}, nil
}

// sentiment averages lexicon scores over scored words. A negator flips the
// score of the word that follows it.
func (a *Analyzer) sentiment(tokens []string) float64 {
	var total float64
	scored := 0
	negate := false

	for _, tok := range tokens {
		if _, ok := negators[tok]; ok {
			negate = true
			continue
		}
		s, ok := a.lexicon[tok]
		if !ok {
			continue
		}
		if negate {
			s = -s
			negate = false
		}
		total += s
		scored++
	}

	if scored == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, total/float64(scored)/maxWordScore))
}
