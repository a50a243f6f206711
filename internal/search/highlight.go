package search

// MergeMatchSpans joins touching or overlapping spans. Input must be sorted
// by Start.
func MergeMatchSpans(spans []MatchSpan) []MatchSpan {
	if len(spans) == 0 {
		return nil
	}
	merged := make([]MatchSpan, 0, len(spans))
	current := spans[0]
	for i := 1; i < len(spans); i++ {
		next := spans[i]
		if next.Start <= current.End+1 {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

// Highlight splits text into alternating unmatched and matched parts. The
// first part is always unmatched and may be empty.
func Highlight(text string, spans []MatchSpan) []string {
	runes := []rune(text)
	parts := make([]string, 0, 2*len(spans)+1)
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End >= len(runes) {
			continue
		}
		parts = append(parts, string(runes[pos:s.Start]), string(runes[s.Start:s.End+1]))
		pos = s.End + 1
	}
	return append(parts, string(runes[pos:]))
}
