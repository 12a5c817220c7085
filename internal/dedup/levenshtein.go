package dedup

import "strings"

// Levenshtein returns the edit distance between a and b after trimming
// whitespace and lowercasing both sides. Insertions, deletions and
// substitutions each cost 1.
func Levenshtein(a, b string) int {
	ra := []rune(normalize(a))
	rb := []rune(normalize(b))

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// StringSimilarity returns a normalized similarity in [0,1]:
// 1 - distance/max(len). Two empty strings are identical (1.0); exactly
// one empty string shares nothing with the other (0.0).
func StringSimilarity(a, b string) float64 {
	na := normalize(a)
	nb := normalize(b)

	if na == "" && nb == "" {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	la := len([]rune(na))
	lb := len([]rune(nb))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}

	return 1.0 - float64(Levenshtein(na, nb))/float64(maxLen)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
