package markdown

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var sampleDocs = []string{
	"# Title\n\nHello *world*\n",
	"```\n# not a heading\n",
	"intro line\nsecond line\n\n- one\n  - nested\n    - deeper\n- two\n\n1. first\n2) second\n",
	"> # Quoted\n> body text\n>\n> - quoted item\n\nafter\n",
	"| a | b |\n|:--|--:|\n| 1 | 2 | 3 |\n| x |\n\ntext\n",
	"p1\n\n```go\nfunc main() {}\n```\n\np2\n\n***\n\n## End ##\n",
	"line with trailing spaces   \r\nnext\r\n\r\n~~~\ntilde\n~~~\n",
	"- a\ncontinued lazily\n- b\n\n  - not nested after blank\n",
	"para\n# heading interrupts\n---\n> quote\n",
	"",
	"\n\n\n",
}

// shape renders the block tree as kind[start,end) lines for comparisons.
func shape(blocks []Block) string {
	var b strings.Builder
	Walk(blocks, func(blk Block, depth int) bool {
		r := blk.SourceRange()
		fmt.Fprintf(&b, "%s%s[%d,%d)\n", strings.Repeat("  ", depth), blk.Kind(), r.Start, r.End)
		return true
	})
	return b.String()
}

func shapeWithIDs(blocks []Block) string {
	var b strings.Builder
	Walk(blocks, func(blk Block, depth int) bool {
		r := blk.SourceRange()
		fmt.Fprintf(&b, "%s%s%s[%d,%d)\n", strings.Repeat("  ", depth), blk.Kind(), blk.NodeID(), r.Start, r.End)
		return true
	})
	return b.String()
}

func TestParseTitleAndParagraph(t *testing.T) {
	doc := Parse("# Title\n\nHello *world*\n", Options{})
	blocks := doc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d:\n%s", len(blocks), shape(blocks))
	}
	h, ok := blocks[0].(*Heading)
	if !ok {
		t.Fatalf("expected heading first, got %T", blocks[0])
	}
	if h.Level != 1 || PlainText(h.Inlines) != "Title" {
		t.Fatalf("unexpected heading level=%d text=%q", h.Level, PlainText(h.Inlines))
	}
	if h.Range != (Range{Start: 0, End: 8}) {
		t.Fatalf("unexpected heading range %+v", h.Range)
	}
	p, ok := blocks[1].(*Paragraph)
	if !ok {
		t.Fatalf("expected paragraph second, got %T", blocks[1])
	}
	if len(p.Inlines) != 2 {
		t.Fatalf("expected 2 inlines, got %#v", p.Inlines)
	}
	if p.Inlines[0].Kind != InlineText || p.Inlines[0].Literal != "Hello " {
		t.Fatalf("unexpected first inline %#v", p.Inlines[0])
	}
	em := p.Inlines[1]
	if em.Kind != InlineEmphasis || em.Weight != WeightItalic {
		t.Fatalf("expected italic emphasis, got %#v", em)
	}
	if len(em.Children) != 1 || em.Children[0].Literal != "world" {
		t.Fatalf("unexpected emphasis children %#v", em.Children)
	}
	if h.ID != 1 || p.ID != 2 {
		t.Fatalf("expected sequential ids 1,2 got %s,%s", h.ID, p.ID)
	}
}

func TestParseUnterminatedFenceRunsToEnd(t *testing.T) {
	text := "```\n# not a heading\n"
	doc := Parse(text, Options{})
	blocks := doc.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("expected single block, got:\n%s", shape(blocks))
	}
	cb, ok := blocks[0].(*CodeBlock)
	if !ok {
		t.Fatalf("expected code block, got %T", blocks[0])
	}
	if cb.Closed {
		t.Fatalf("expected unterminated fence")
	}
	if cb.Range.End != len(text) {
		t.Fatalf("expected code block to reach document end, got %+v", cb.Range)
	}
	if len(cb.Lines) != 1 || cb.Lines[0] != "# not a heading" {
		t.Fatalf("unexpected code lines %q", cb.Lines)
	}
	if toc := ExtractTOC(doc); len(toc) != 0 {
		t.Fatalf("expected empty toc, got %+v", toc)
	}
}

func TestParseCoversEveryNonBlankLine(t *testing.T) {
	for _, text := range sampleDocs {
		doc := Parse(text, Options{})
		if err := doc.Validate(); err != nil {
			t.Fatalf("validate %q: %v", text, err)
		}
		covered := make([]bool, len(text))
		for _, b := range doc.Blocks() {
			r := b.SourceRange()
			for i := r.Start; i < r.End; i++ {
				if covered[i] {
					t.Fatalf("byte %d covered twice in %q", i, text)
				}
				covered[i] = true
			}
		}
		for _, line := range splitLines(text, 0) {
			blank := isBlankLine(line.text)
			for i := line.start; i < line.end; i++ {
				if blank && covered[i] && !insideCode(doc, i) {
					t.Fatalf("blank byte %d covered in %q", i, text)
				}
				if !blank && !covered[i] {
					t.Fatalf("byte %d of line %q not covered in %q", i, line.text, text)
				}
			}
		}
	}
}

func insideCode(doc *Document, offset int) bool {
	chain, _ := doc.BlockAt(offset)
	for _, b := range chain {
		if b.Kind() == BlockCode || b.Kind() == BlockQuote {
			return true
		}
	}
	return false
}

func TestParseListNesting(t *testing.T) {
	doc := Parse("- a\n  - b\n- c\n", Options{TabWidth: 2})
	blocks := doc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected two top-level items, got:\n%s", shape(blocks))
	}
	a := blocks[0].(*ListItem)
	if len(a.Items) != 1 {
		t.Fatalf("expected nested child, got %d", len(a.Items))
	}
	b := a.Items[0].(*ListItem)
	if b.Depth != 1 || PlainText(b.Inlines) != "b" {
		t.Fatalf("unexpected nested item depth=%d text=%q", b.Depth, PlainText(b.Inlines))
	}
	if a.Range != (Range{Start: 0, End: 10}) {
		t.Fatalf("expected parent range to cover child, got %+v", a.Range)
	}
	if a.ID != 1 || b.ID != 2 || blocks[1].NodeID() != 3 {
		t.Fatalf("expected depth-first ids, got %s %s %s", a.ID, b.ID, blocks[1].NodeID())
	}
}

func TestParseListDepthFollowsTabWidth(t *testing.T) {
	doc := Parse("- a\n    - b\n", Options{TabWidth: 4})
	a := doc.Blocks()[0].(*ListItem)
	if len(a.Items) != 1 || a.Items[0].(*ListItem).Depth != 1 {
		t.Fatalf("expected depth 1 child with tab width 4, got:\n%s", shape(doc.Blocks()))
	}
}

func TestParseOrderedMarkers(t *testing.T) {
	doc := Parse("3. three\n4) four\n", Options{})
	blocks := doc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected two items, got:\n%s", shape(blocks))
	}
	first := blocks[0].(*ListItem)
	second := blocks[1].(*ListItem)
	if !first.Ordered || first.Number != 3 || first.Marker != "3." {
		t.Fatalf("unexpected first item %+v", first)
	}
	if second.Number != 4 || second.Marker != "4)" {
		t.Fatalf("unexpected second item %+v", second)
	}
}

func TestParseTablePadsAndClipsRows(t *testing.T) {
	doc := Parse("| a | b |\n|:--|--:|\n| 1 | 2 | 3 |\n| x |\n", Options{})
	tbl, ok := doc.Blocks()[0].(*Table)
	if !ok {
		t.Fatalf("expected table, got:\n%s", shape(doc.Blocks()))
	}
	if len(tbl.Align) != 2 || tbl.Align[0] != AlignLeft || tbl.Align[1] != AlignRight {
		t.Fatalf("unexpected alignment %v", tbl.Align)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected two body rows, got %d", len(tbl.Rows))
	}
	if got := PlainText(tbl.Rows[0].Cells[1].Inlines); got != "2" {
		t.Fatalf("expected clipped row cell %q, got %q", "2", got)
	}
	if len(tbl.Rows[1].Cells) != 2 || !tbl.Rows[1].Cells[1].Range.Empty() {
		t.Fatalf("expected padded empty cell, got %+v", tbl.Rows[1].Cells)
	}
}

func TestParseTableNeedsSeparatorWithPipe(t *testing.T) {
	doc := Parse("a | b\n---\n", Options{})
	for _, b := range doc.Blocks() {
		if b.Kind() == BlockTable {
			t.Fatalf("did not expect a table:\n%s", shape(doc.Blocks()))
		}
	}
}

func TestParseBlockquoteChildrenKeepDocumentOffsets(t *testing.T) {
	text := "> # Q\n> text\n"
	doc := Parse(text, Options{})
	bq, ok := doc.Blocks()[0].(*Blockquote)
	if !ok {
		t.Fatalf("expected blockquote, got:\n%s", shape(doc.Blocks()))
	}
	if len(bq.Blocks) != 2 {
		t.Fatalf("expected two children, got:\n%s", shape(bq.Blocks))
	}
	h := bq.Blocks[0].(*Heading)
	if text[h.Content.Start:h.Content.End] != "Q" {
		t.Fatalf("heading content range points at %q", text[h.Content.Start:h.Content.End])
	}
	p := bq.Blocks[1].(*Paragraph)
	if text[p.Content.Start:p.Content.End] != "text" {
		t.Fatalf("paragraph content range points at %q", text[p.Content.Start:p.Content.End])
	}
}

func TestParseNestedBlockquoteDepthLimit(t *testing.T) {
	text := strings.Repeat(">", markdownNestingLimit+10) + " deep\n"
	doc := Parse(text, Options{})
	if err := doc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	depth := 0
	Walk(doc.Blocks(), func(_ Block, d int) bool {
		if d > depth {
			depth = d
		}
		return true
	})
	if depth > markdownNestingLimit {
		t.Fatalf("expected nesting to stop at %d, got %d", markdownNestingLimit, depth)
	}
}

func TestParseFencedCodeKeepsHeadingLiteral(t *testing.T) {
	doc := Parse("```md\n# inside\n```\n# outside\n", Options{})
	blocks := doc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("unexpected blocks:\n%s", shape(blocks))
	}
	cb := blocks[0].(*CodeBlock)
	if cb.Info != "md" || !cb.Closed || cb.Lines[0] != "# inside" {
		t.Fatalf("unexpected code block %+v", cb)
	}
	if len(cb.LineEnds) != 2 || cb.LineEnds[0] != 6 || cb.LineEnds[1] != 15 {
		t.Fatalf("unexpected line ends %v", cb.LineEnds)
	}
	if blocks[1].Kind() != BlockHeading {
		t.Fatalf("expected heading after fence, got %s", blocks[1].Kind())
	}
}

func TestBlockAtReturnsChain(t *testing.T) {
	doc := Parse("# T\n\n- a\n  - b\n", Options{})
	chain, err := doc.BlockAt(12)
	if err != nil {
		t.Fatalf("BlockAt: %v", err)
	}
	if len(chain) != 2 || chain[1].(*ListItem).Depth != 1 {
		t.Fatalf("expected item chain, got %d blocks", len(chain))
	}
	chain, err = doc.BlockAt(4)
	if err != nil || len(chain) != 0 {
		t.Fatalf("expected empty chain in blank line, got %d (%v)", len(chain), err)
	}
	if _, err := doc.BlockAt(100); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected bounds error, got %v", err)
	}
}

func TestFindUsesIndex(t *testing.T) {
	doc := Parse("# a\n\n- x\n  - y\n", Options{})
	b, ok := doc.Find(3)
	if !ok || b.Kind() != BlockListItem || b.(*ListItem).Depth != 1 {
		t.Fatalf("expected nested item for id 3, got %v %v", b, ok)
	}
	if _, ok := doc.Find(99); ok {
		t.Fatalf("did not expect id 99")
	}
}

func TestValidateDetectsOverlap(t *testing.T) {
	doc := Parse("one\n\ntwo\n", Options{})
	doc.Blocks()[1].node().Range.Start = 1
	err := doc.Validate()
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected parse failure, got %v", err)
	}
	var pf *ParseFailure
	if !errors.As(err, &pf) || !strings.Contains(pf.Reason, "overlaps") {
		t.Fatalf("unexpected failure %v", err)
	}
}

func TestValidateDetectsDuplicateIDs(t *testing.T) {
	doc := Parse("one\n\ntwo\n", Options{})
	doc.Blocks()[1].node().ID = doc.Blocks()[0].NodeID()
	if err := doc.Validate(); !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}
