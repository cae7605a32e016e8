// Package namescore compares personal names for duplicate detection.
//
// Each component (first, last) is normalized and scored with a Levenshtein
// similarity ratio on a 0..100 scale. The combined score weights the last
// name more heavily.
package namescore

import (
	pkgstrings "kinship/pkg/platform/strings"
)

// Component weights, in points of the 0..100 score.
const (
	LastNameWeight  = 60
	FirstNameWeight = 40
)

// Score returns the weighted name similarity between a query name and a
// candidate name, in [0, 100].
//
// The weighted sum is reduced to one integer fraction before dividing, so a
// score that is exactly 60 or 90 compares equal to the thresholds.
func Score(queryFirst, queryLast, candFirst, candLast string) float64 {
	lastKept, lastLen := similarity(queryLast, candLast)
	firstKept, firstLen := similarity(queryFirst, candFirst)
	num := LastNameWeight*lastKept*firstLen + FirstNameWeight*firstKept*lastLen
	return float64(num) / float64(lastLen*firstLen)
}

// Ratio is 100 * (1 - distance / longest) over normalized runes.
// Either side empty after normalization scores 0.
func Ratio(a, b string) float64 {
	kept, longest := similarity(a, b)
	return float64(100*kept) / float64(longest)
}

// similarity returns longest-distance and longest for the normalized names,
// or 0/1 when either side is empty.
func similarity(a, b string) (kept, longest int) {
	ra := []rune(pkgstrings.NormalizeName(a))
	rb := []rune(pkgstrings.NormalizeName(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0, 1
	}
	longest = max(len(ra), len(rb))
	return longest - distance(ra, rb), longest
}

// distance is the Levenshtein edit distance using two rows.
func distance(a, b []rune) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			if a[i-1] == b[j-1] {
				curr[i] = prev[i-1]
			} else {
				curr[i] = 1 + min(prev[i-1], prev[i], curr[i-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
