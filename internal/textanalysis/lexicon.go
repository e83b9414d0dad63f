// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package textanalysis

// negators flip the polarity of the next scored word.
var negators = map[string]struct{}{
	"not":   {},
	"no":    {},
	"never": {},
	"don":   {}, // "don't" tokenizes to "don" + "t"
	"isn":   {},
	"wasn":  {},
}

// defaultLexicon is a small AFINN-style word list tuned for how people
// describe what they feel like watching.
var defaultLexicon = map[string]float64{
	// positive
	"amazing":     4,
	"awesome":     4,
	"beautiful":   3,
	"best":        3,
	"calm":        2,
	"cheerful":    3,
	"cozy":        2,
	"curious":     1,
	"delight":     3,
	"delighted":   3,
	"enjoy":       2,
	"excited":     3,
	"exciting":    3,
	"fantastic":   4,
	"fun":         3,
	"funny":       2,
	"glad":        3,
	"good":        3,
	"great":       3,
	"happy":       3,
	"hopeful":     2,
	"joy":         3,
	"like":        2,
	"love":        3,
	"loved":       3,
	"lovely":      3,
	"nice":        3,
	"peaceful":    2,
	"relaxed":     2,
	"romantic":    2,
	"thrilled":    4,
	"warm":        1,
	"wonderful":   4,
	"adventurous": 2,
	"inspired":    2,
	// negative
	"angry":      -3,
	"anxious":    -2,
	"awful":      -3,
	"bad":        -3,
	"bored":      -2,
	"boring":     -3,
	"depressed":  -3,
	"lonely":     -2,
	"miserable":  -3,
	"sad":        -2,
	"scared":     -2,
	"stressed":   -2,
	"terrible":   -3,
	"tired":      -2,
	"upset":      -2,
	"worried":    -3,
	"hate":       -3,
	"exhausted":  -2,
	"frustrated": -2,
	"gloomy":     -2,
}
