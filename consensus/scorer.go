package consensus

// FilterResults drops results scoring below minScore.
//
// The boundary is inclusive: a result whose score equals minScore is kept.
// Surviving scores are returned unchanged, never renormalized, and class
// labels pass through untouched.
func FilterResults(results []Result, minScore float32) []Result {
	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Score >= minScore {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
