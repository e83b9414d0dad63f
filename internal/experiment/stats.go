// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import "math"

// SignificanceLevel is the p-value threshold below which a result is significant.
const SignificanceLevel = 0.05

// ChiSquare returns the goodness-of-fit statistic of observed against a
// uniform expectation (the mean of observed), along with that expectation.
// The statistic is 0 when the expectation is 0.
func ChiSquare(observed []float64) (chi, expected float64) {
	if len(observed) == 0 {
		return 0, 0
	}

	var sum float64
	for _, o := range observed {
		sum += o
	}
	expected = sum / float64(len(observed))
	if expected == 0 {
		return 0, 0
	}

	for _, o := range observed {
		d := o - expected
		chi += d * d / expected
	}
	return chi, expected
}

// ChiSquareCDF approximates the chi-square CDF with k degrees of freedom as
//
//	1 - e^(-x/2) * Σ_{i<k} (x/2)^i / i!
//
// This is exact for even degrees of freedom 2k and is used as an
// approximation otherwise. The i=0 term is always included, so k <= 0
// yields 1 - e^(-x/2).
func ChiSquareCDF(x float64, k int) float64 {
	half := x / 2

	sum := 1.0
	for i := 1; i < k; i++ {
		sum += math.Pow(half, float64(i)) / factorial(i)
	}

	return 1 - math.Exp(-half)*sum
}

// PValue returns 1 - ChiSquareCDF(x, k).
func PValue(x float64, k int) float64 {
	return 1 - ChiSquareCDF(x, k)
}

// factorial returns n! computed iteratively. n <= 1 yields 1.
func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}
