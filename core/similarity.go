package core

import "math"

// SimilarityFromDistance converts a cosine distance in [0,2] to a
// similarity in [0,1]. This is the single canonical formula for the
// whole system; every similarity shown to callers goes through it.
// Out-of-range distances are clamped rather than rejected.
func SimilarityFromDistance(distance float64) float64 {
	similarity := 1 - distance/2
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}

// RoundSimilarity rounds a similarity to 4 decimal places for
// presentation stability.
func RoundSimilarity(similarity float64) float64 {
	return math.Round(similarity*10000) / 10000
}
