// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"fmt"
)

// Config contains the recommendation engine settings.
type Config struct {
	// DefaultLimit is used when a request does not set a limit.
	DefaultLimit int `koanf:"default_limit" json:"default_limit"`

	// MaxLimit caps the number of recommendations returned.
	MaxLimit int `koanf:"max_limit" json:"max_limit"`

	// SimilarityWeight scales the rating-vector cosine similarity that is
	// added to the preference score when a request carries a reference vector.
	SimilarityWeight float64 `koanf:"similarity_weight" json:"similarity_weight"`

	// DiversityLambda balances relevance against feature overlap when the
	// final list is selected (1.0 = pure relevance, 0.0 = pure diversity).
	DiversityLambda float64 `koanf:"diversity_lambda" json:"diversity_lambda"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:     20,
		MaxLimit:         100,
		SimilarityWeight: 0.5,
		DiversityLambda:  0.8,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit (%d) must be >= default_limit (%d)", c.MaxLimit, c.DefaultLimit)
	}
	if c.SimilarityWeight < 0 {
		return fmt.Errorf("similarity_weight must be non-negative, got %f", c.SimilarityWeight)
	}
	if c.DiversityLambda < 0 || c.DiversityLambda > 1 {
		return fmt.Errorf("diversity_lambda must be in [0, 1], got %f", c.DiversityLambda)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
