// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

// Package recommend ranks media items for a user's current mood.
//
// The building blocks are pure functions:
//
//   - ExtractFeatures derives decade, genre and title keyword tags
//   - CosineSimilarity compares two sparse rating vectors
//   - FilterByMood keeps items whose genres or description suit a mood
//   - ApplyUserPreferences scores items against a preference profile
//
// Engine composes them. A request is resolved to a mood (explicit name,
// analyzed text or the happy default), the catalog is filtered by that mood,
// scored by preferences plus an optional collaborative similarity term and
// finally selected with Maximal Marginal Relevance over feature overlap:
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), classifier, logger)
//	resp, err := engine.Recommend(ctx, &recommend.Request{
//	    Text:  "I want something fun tonight",
//	    Items: catalog,
//	    Limit: 10,
//	})
//
// Preference scoring does not redistribute the weight of a skipped term, so
// scores are only comparable within one profile.
package recommend
