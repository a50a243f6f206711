// Package search ranks short labels, such as outline headings and snippet
// names, against a typed filter.
package search

import (
	"strings"
	"unicode"
)

// MatchSpan is an inclusive [Start, End] range of matched rune indexes.
type MatchSpan struct {
	Start int
	End   int
}

// MatchDetails describes where a pattern landed in the target text.
type MatchDetails struct {
	Start    int
	End      int
	WordHits int
	Spans    []MatchSpan
}

// FuzzyMatcher scores pattern against text, fzf style:
//   - every matched character earns charBonus
//   - a character right after the previous match earns consecutiveBonus
//   - a character at a word start earns wordBoundaryBonus
//   - each skipped run of characters costs gapPenalty
//   - a contiguous substring earns substringBonus, more at the start
//
// Matching ignores case unless the pattern contains an upper case letter.
type FuzzyMatcher struct {
	charBonus          float64
	consecutiveBonus   float64
	wordBoundaryBonus  float64
	gapPenalty         float64
	substringBonus     float64
	prefixBonus        float64
	startPenaltyFactor float64
}

// NewFuzzyMatcher creates a matcher with the default weights.
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{
		charBonus:          1.2,
		consecutiveBonus:   1.2,
		wordBoundaryBonus:  0.6,
		gapPenalty:         0.18,
		substringBonus:     1.2,
		prefixBonus:        2.4,
		startPenaltyFactor: 0.012,
	}
}

func patternHasUppercase(pattern string) bool {
	for _, r := range pattern {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// Match reports whether every pattern character occurs in text in order,
// with a score that is higher for better matches.
func (fm *FuzzyMatcher) Match(pattern, text string) (score float64, matched bool) {
	score, matched, _ = fm.MatchDetailed(pattern, text)
	return score, matched
}

// MatchDetailed is Match plus the matched positions.
func (fm *FuzzyMatcher) MatchDetailed(pattern, text string) (float64, bool, MatchDetails) {
	if pattern == "" {
		return 1.0, true, MatchDetails{Start: 0, End: -1}
	}
	textRunes := []rune(text)
	fold := !patternHasUppercase(pattern)
	p := foldRunes([]rune(pattern), fold)
	t := foldRunes(textRunes, fold)
	if len(p) > len(t) {
		return 0, false, MatchDetails{Start: -1, End: -1}
	}

	if idx := indexRunes(t, p); idx >= 0 {
		return fm.contiguous(textRunes, idx, len(p))
	}
	return fm.scattered(textRunes, t, p)
}

func (fm *FuzzyMatcher) contiguous(text []rune, idx, n int) (float64, bool, MatchDetails) {
	score := fm.charBonus*float64(n) + fm.consecutiveBonus*float64(n-1)
	hits := 0
	if isWordStart(text, idx) {
		score += fm.wordBoundaryBonus
		hits++
	}
	bonus := fm.substringBonus
	if idx > 0 && !isWordStart(text, idx) {
		bonus *= 0.15
	}
	score += bonus
	if idx == 0 {
		score += fm.prefixBonus
	}
	score -= fm.startPenaltyFactor * float64(idx)
	end := idx + n - 1
	return score, true, MatchDetails{
		Start:    idx,
		End:      end,
		WordHits: hits,
		Spans:    []MatchSpan{{Start: idx, End: end}},
	}
}

// scattered matches pattern characters left to right. It first prefers the
// next word start over the nearest occurrence and falls back to plain
// leftmost matching when that choice leaves the rest unmatched.
func (fm *FuzzyMatcher) scattered(orig, text, pattern []rune) (float64, bool, MatchDetails) {
	positions, ok := place(orig, text, pattern, true)
	if !ok {
		positions, ok = place(orig, text, pattern, false)
	}
	if !ok {
		return 0, false, MatchDetails{Start: -1, End: -1}
	}

	score := 0.0
	hits := 0
	spans := make([]MatchSpan, 0, len(positions))
	for i, pos := range positions {
		score += fm.charBonus
		if isWordStart(orig, pos) {
			score += fm.wordBoundaryBonus
			hits++
		}
		if i > 0 {
			if pos == positions[i-1]+1 {
				score += fm.consecutiveBonus
			} else {
				score -= fm.gapPenalty
			}
		}
		spans = append(spans, MatchSpan{Start: pos, End: pos})
	}
	start, end := positions[0], positions[len(positions)-1]
	score -= fm.startPenaltyFactor * float64(start)
	return score, true, MatchDetails{
		Start:    start,
		End:      end,
		WordHits: hits,
		Spans:    MergeMatchSpans(spans),
	}
}

func place(orig, text, pattern []rune, preferWords bool) ([]int, bool) {
	positions := make([]int, 0, len(pattern))
	from := 0
	for pi, r := range pattern {
		pos := -1
		remaining := len(pattern) - pi - 1
		for i := from; i < len(text)-remaining; i++ {
			if text[i] != r {
				continue
			}
			if pos < 0 {
				pos = i
				if !preferWords || isWordStart(orig, i) || (pi > 0 && i == positions[pi-1]+1) {
					break
				}
				continue
			}
			if isWordStart(orig, i) {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, false
		}
		positions = append(positions, pos)
		from = pos + 1
	}
	return positions, true
}

func isWordStart(text []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev, cur := text[i-1], text[i]
	if strings.ContainsRune(" -_./:#()[]", prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}

func foldRunes(runes []rune, fold bool) []rune {
	if !fold {
		return runes
	}
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(text, pattern []rune) int {
	for i := 0; i+len(pattern) <= len(text); i++ {
		j := 0
		for j < len(pattern) && text[i+j] == pattern[j] {
			j++
		}
		if j == len(pattern) {
			return i
		}
	}
	return -1
}
