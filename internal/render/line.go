package render

import (
	"sort"
	"strings"

	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/textutil"
)

// Style is a set of presentation attributes for a run of text.
type Style uint16

const (
	StyleBold Style = 1 << iota
	StyleItalic
	StyleStrike
	StyleCode
	StyleLink
	StyleImage
	StyleHeading
	StyleCodeBlock
	StyleQuote
	StyleRule
	StyleBullet
	StyleTableBorder
)

// Has reports whether every attribute of other is set in s.
func (s Style) Has(other Style) bool { return s&other == other }

// Run is a chunk of display text with one style.
type Run struct {
	Text  string
	Style Style
}

// Line is one display row of the preview. Source is the part of the document
// the row was produced from; decoration rows such as borders carry an empty
// range at their position.
type Line struct {
	Runs   []Run
	Source markdown.Range
	Node   markdown.NodeID
	Kind   markdown.BlockKind
	// Level is the heading level for heading rows, zero otherwise.
	Level int
}

// Text joins the runs.
func (l Line) Text() string {
	if len(l.Runs) == 1 {
		return l.Runs[0].Text
	}
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Width is the display width of the row.
func (l Line) Width() int {
	w := 0
	for _, r := range l.Runs {
		w += textutil.DisplayWidth(r.Text)
	}
	return w
}

// Index is the rendered preview of one document revision at one width. It
// is never modified after Render returns; a new revision gets a new Index.
type Index struct {
	lines    []Line
	first    map[markdown.NodeID]int
	width    int
	revision uint64
	docLen   int
}

func (ix *Index) Len() int { return len(ix.lines) }
func (ix *Index) Width() int { return ix.width }
func (ix *Index) Revision() uint64 { return ix.revision }
func (ix *Index) Lines() []Line { return ix.lines }
func (ix *Index) DocumentLen() int { return ix.docLen }

// Line returns row i.
func (ix *Index) Line(i int) (Line, error) {
	if i < 0 || i >= len(ix.lines) {
		return Line{}, &markdown.BoundsError{What: "render line", Value: i, Limit: max(len(ix.lines)-1, 0)}
	}
	return ix.lines[i], nil
}

// LineAt returns the row showing offset: the first row with a non-empty
// source range ending after offset. Offsets in blank separator text resolve
// to the next block's first row; offsets past the last row resolve to it.
func (ix *Index) LineAt(offset int) (int, error) {
	if offset < 0 || offset > ix.docLen {
		return 0, &markdown.BoundsError{What: "offset", Value: offset, Limit: ix.docLen}
	}
	n := len(ix.lines)
	i := sort.Search(n, func(k int) bool { return ix.lines[k].Source.End > offset })
	for i < n && ix.lines[i].Source.Empty() {
		i++
	}
	if i < n {
		return i, nil
	}
	for k := n - 1; k >= 0; k-- {
		if !ix.lines[k].Source.Empty() {
			return k, nil
		}
	}
	return 0, nil
}

// SourceRange returns the document range behind row i.
func (ix *Index) SourceRange(i int) (markdown.Range, error) {
	line, err := ix.Line(i)
	if err != nil {
		return markdown.Range{}, err
	}
	return line.Source, nil
}

// Span returns the half-open row interval whose sources touch r, including
// decoration rows in between.
func (ix *Index) Span(r markdown.Range) (int, int) {
	n := len(ix.lines)
	lo := sort.Search(n, func(k int) bool { return ix.lines[k].Source.End > r.Start })
	hi := sort.Search(n, func(k int) bool { return ix.lines[k].Source.Start >= r.End && k >= lo })
	if r.Empty() && hi <= lo && lo < n {
		hi = lo + 1
	}
	for !r.Empty() && hi < n && ix.lines[hi].Source.Empty() && ix.lines[hi].Source.Start == r.End {
		hi++
	}
	for lo > 0 && ix.lines[lo-1].Source.Empty() && ix.lines[lo-1].Source.Start >= r.Start {
		lo--
	}
	return lo, max(hi, lo)
}

// FirstLine returns the first row produced by node id.
func (ix *Index) FirstLine(id markdown.NodeID) (int, bool) {
	i, ok := ix.first[id]
	return i, ok
}
