package search

import "sort"

// Result is one matching item.
type Result struct {
	// Index is the position of the item in the input slice.
	Index int
	Score float64
	Spans []MatchSpan
}

// Rank returns the items matching pattern, best first. Ties keep input
// order, and an empty pattern returns every item unchanged.
func (fm *FuzzyMatcher) Rank(pattern string, items []string) []Result {
	results := make([]Result, 0, len(items))
	for i, item := range items {
		score, ok, details := fm.MatchDetailed(pattern, item)
		if !ok {
			continue
		}
		results = append(results, Result{Index: i, Score: score, Spans: details.Spans})
	}
	if pattern == "" {
		return results
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	return results
}
