// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package recommend

import (
	"math"
)

// Diversify selects up to k recommendations with Maximal Marginal Relevance:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// where sim is the Jaccard similarity of the items' feature tags. Input must
// be sorted by descending score; ties are broken by input position. With
// lambda >= 1 the input prefix is returned unchanged.
func Diversify(recs []Recommendation, features []FeatureSet, lambda float64, k int) []Recommendation {
	if k > len(recs) {
		k = len(recs)
	}
	if k <= 0 {
		return []Recommendation{}
	}
	if lambda >= 1 || len(features) != len(recs) {
		return recs[:k]
	}
	if lambda < 0 {
		lambda = 0
	}

	selected := make([]Recommendation, 0, k)
	picked := make([]bool, len(recs))
	// maxSim[i] is the highest similarity of candidate i to any selected item.
	maxSim := make([]float64, len(recs))

	for len(selected) < k {
		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i := range recs {
			if picked[i] {
				continue
			}
			mmr := lambda*recs[i].Score - (1-lambda)*maxSim[i]
			if mmr > bestMMR {
				bestMMR = mmr
				bestIdx = i
			}
		}

		picked[bestIdx] = true
		selected = append(selected, recs[bestIdx])

		for i := range recs {
			if picked[i] {
				continue
			}
			if sim := JaccardSimilarity(features[i], features[bestIdx]); sim > maxSim[i] {
				maxSim[i] = sim
			}
		}
	}

	return selected
}
