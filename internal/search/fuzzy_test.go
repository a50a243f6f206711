package search

import (
	"reflect"
	"strings"
	"testing"
)

func TestFuzzyMatch_BasicMatching(t *testing.T) {
	fm := NewFuzzyMatcher()

	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"", "anything", true},
		{"i", "Install", true},
		{"inst", "Install", true},
		{"ist", "Install", true},
		{"cb", "Code block", true},
		{"tbl", "Table", true},
		{"xyz", "Install", false},
		{"Inst", "install", false}, // upper case pattern is case sensitive
		{"ab", "xab -ac", true},    // word-start preference falls back
		{"toolong", "tool", false},
	}

	for _, tt := range tests {
		score, matched := fm.Match(tt.pattern, tt.text)
		if matched != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v (score: %f)",
				tt.pattern, tt.text, matched, tt.want, score)
		}
	}
}

func TestFuzzyMatch_ScoringOrder(t *testing.T) {
	fm := NewFuzzyMatcher()

	pairs := []struct {
		pattern string
		better  string
		worse   string
	}{
		{"set", "Setup", "Reset"},               // prefix over interior substring
		{"cb", "Code block", "Scrabble"},        // word starts over interior letters
		{"code", "Code block", "Inline code x"}, // earlier substring
	}
	for _, p := range pairs {
		hi, ok1 := fm.Match(p.pattern, p.better)
		lo, ok2 := fm.Match(p.pattern, p.worse)
		if !ok1 || !ok2 {
			t.Fatalf("%q should match both %q and %q", p.pattern, p.better, p.worse)
		}
		if hi <= lo {
			t.Fatalf("%q: %q scored %f, not above %q at %f", p.pattern, p.better, hi, p.worse, lo)
		}
	}
}

func TestMatchDetailedSpans(t *testing.T) {
	fm := NewFuzzyMatcher()
	_, ok, details := fm.MatchDetailed("cbl", "Code block")
	if !ok {
		t.Fatalf("expected match")
	}
	want := []MatchSpan{{Start: 0, End: 0}, {Start: 5, End: 6}}
	if !reflect.DeepEqual(details.Spans, want) {
		t.Fatalf("spans = %+v, want %+v", details.Spans, want)
	}
	if details.WordHits != 2 {
		t.Fatalf("word hits = %d", details.WordHits)
	}

	parts := Highlight("Code block", details.Spans)
	if strings.Join(parts, "|") != "|C|ode |bl|ock" {
		t.Fatalf("highlight parts %q", parts)
	}
}

func TestMergeMatchSpans(t *testing.T) {
	got := MergeMatchSpans([]MatchSpan{{0, 0}, {1, 2}, {2, 3}, {6, 6}})
	want := []MatchSpan{{0, 3}, {6, 6}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merged = %+v, want %+v", got, want)
	}
	if MergeMatchSpans(nil) != nil {
		t.Fatalf("nil input should stay nil")
	}
}

func TestRank(t *testing.T) {
	fm := NewFuzzyMatcher()
	items := []string{"Overview", "Installing", "Usage", "Install notes"}

	all := fm.Rank("", items)
	if len(all) != len(items) || all[2].Index != 2 {
		t.Fatalf("empty pattern should keep every item in order: %+v", all)
	}

	got := fm.Rank("inst", items)
	if len(got) != 2 {
		t.Fatalf("expected two matches, got %+v", got)
	}
	if got[0].Index != 1 || got[1].Index != 3 {
		t.Fatalf("equal scores should keep input order: %+v", got)
	}
}
