package linkage

import (
	"math"

	"github.com/agext/levenshtein"
)

// Ratio scores the similarity of two strings as an integer percentage,
// 100 meaning identical.
func Ratio(a, b string) int {
	return int(math.Round(levenshtein.Similarity(a, b, nil) * 100))
}

// bestRatio is the highest Ratio across the variant cross-product of two
// names.
func bestRatio(aVariants, bVariants []string) int {
	best := 0
	for _, a := range aVariants {
		for _, b := range bVariants {
			if r := Ratio(a, b); r > best {
				best = r
			}
		}
	}
	return best
}
