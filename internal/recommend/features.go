// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmood/internal/models"
)

// Feature tag prefixes.
const (
	TagDecadePrefix  = "decade_"
	TagGenrePrefix   = "genre_"
	TagKeywordPrefix = "keyword_"
)

// minKeywordLength is the shortest title word kept as a keyword tag.
const minKeywordLength = 3

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

var nonWord = regexp.MustCompile(`\W+`)

// FeatureSet is an unordered, deduplicated set of feature tags.
type FeatureSet map[string]struct{}

// Has reports whether tag is in the set.
func (f FeatureSet) Has(tag string) bool {
	_, ok := f[tag]
	return ok
}

// Sorted returns the tags in lexical order.
func (f FeatureSet) Sorted() []string {
	tags := make([]string, 0, len(f))
	for tag := range f {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ExtractFeatures derives decade, genre and title keyword tags from item.
func ExtractFeatures(item *models.MediaItem) FeatureSet {
	tags := make(FeatureSet)

	if decade, ok := item.Decade(); ok {
		tags[TagDecadePrefix+strconv.Itoa(decade)+"s"] = struct{}{}
	}

	for _, g := range item.Genres {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			tags[TagGenrePrefix+g] = struct{}{}
		}
	}

	for _, w := range titleKeywords(item.Title) {
		tags[TagKeywordPrefix+w] = struct{}{}
	}

	return tags
}

// titleKeywords splits a title on non-word characters and keeps lowercase
// words that are not stop words and have at least three characters.
func titleKeywords(title string) []string {
	if title == "" {
		return nil
	}

	var words []string
	for _, w := range nonWord.Split(strings.ToLower(title), -1) {
		if len(w) < minKeywordLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}
