package markdown

import "testing"

func TestExtractTOCIncludesNestedHeadingsInOrder(t *testing.T) {
	doc := Parse("# A\n\n> ## B\n\ntext\n\n### C *em*\n\n```\n# code\n```\n", Options{})
	toc := ExtractTOC(doc)
	if len(toc) != 3 {
		t.Fatalf("expected 3 entries, got %+v", toc)
	}
	wantText := []string{"A", "B", "C em"}
	wantLevel := []int{1, 2, 3}
	for i, e := range toc {
		if e.Text != wantText[i] || e.Level != wantLevel[i] {
			t.Fatalf("entry %d: got %q level %d", i, e.Text, e.Level)
		}
		if b, ok := doc.Find(e.ID); !ok || b.Kind() != BlockHeading {
			t.Fatalf("entry %d id %s does not resolve to a heading", i, e.ID)
		}
		if i > 0 && e.Range.Start <= toc[i-1].Range.Start {
			t.Fatalf("entries out of order at %d", i)
		}
	}
}

func TestExtractTOCSlugsAreUnique(t *testing.T) {
	doc := Parse("# Intro\n\n# Intro\n\n## Intro!\n\n# Café Ünïcode\n", Options{})
	toc := ExtractTOC(doc)
	want := []string{"intro", "intro-1", "intro-2", "café-ünïcode"}
	if len(toc) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(toc))
	}
	for i, e := range toc {
		if e.Slug != want[i] {
			t.Fatalf("entry %d: expected slug %q, got %q", i, want[i], e.Slug)
		}
	}
}

func TestExtractTOCNormalizesText(t *testing.T) {
	// "e" followed by a combining acute accent.
	doc := Parse("# Cafe\u0301\n", Options{})
	toc := ExtractTOC(doc)
	if len(toc) != 1 || toc[0].Text != "Caf\u00e9" {
		t.Fatalf("expected NFC text, got %+v", toc)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Spaces  ", "--spaces--"},
		{"API_v2 (draft)", "api_v2-draft"},
		{"Q&A: what? why!", "qa-what-why"},
		{"already-slugged", "already-slugged"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSnippetByName(t *testing.T) {
	s, ok := SnippetByName("Table")
	if !ok {
		t.Fatalf("expected table snippet")
	}
	doc := Parse(s.Text, Options{})
	if len(doc.Blocks()) != 1 || doc.Blocks()[0].Kind() != BlockTable {
		t.Fatalf("table snippet should parse as a table")
	}
	if _, ok := SnippetByName("missing"); ok {
		t.Fatalf("did not expect a snippet")
	}
}
