package catalog

import "strings"

// ScoreFunc rates how well a candidate name matches a normalized query.
// Scores are in [0, 1]; 1 is an exact match. The scoring strategy is pluggable
// so the resolution control flow can be tested independently of the heuristic.
type ScoreFunc func(query, candidate string) float64

// scoreAccept is the confidence floor for accepting a remote match outright:
// exact and substring matches clear it, pure edit-distance similarity doesn't.
const scoreAccept = 0.9

// DefaultScore is the standard matching heuristic: case-insensitive exact
// match scores 1, substring containment scores 0.9 plus a small bonus for
// coverage, anything else falls back to normalized edit-distance similarity
// capped below the acceptance threshold.
func DefaultScore(query, candidate string) float64 {
	q := normalize(query)
	c := normalize(candidate)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1
	}
	if strings.Contains(c, q) {
		// Longer queries covering more of the candidate score higher.
		return scoreAccept + 0.1*float64(len(q))/float64(len(c))
	}

	dist := editDistance(q, c)
	sim := 1.0 - float64(dist)/float64(max(len(q), len(c)))
	if sim < 0 {
		sim = 0
	}
	// Cap so fuzzy-only similarity can suggest but never auto-accept.
	return sim * (scoreAccept - 0.05)
}

// normalize case-folds, trims, and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// editDistance computes Levenshtein distance with a two-row table.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
