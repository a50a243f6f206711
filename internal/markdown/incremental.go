package markdown

import (
	"fmt"
	"sort"
)

// maxWindowExtensions bounds how often the re-scan window grows before the
// driver gives up and parses the whole document.
var maxWindowExtensions = 8

// checkSplice validates an incrementally rebuilt document. Tests replace it
// to force the recovery path.
var checkSplice = (*Document).Validate

// Edit replaces Range (in the current document's coordinates) with Text.
type Edit struct {
	Range Range
	Text  string
}

// Delta is the change in document length the edit causes.
func (e Edit) Delta() int { return len(e.Text) - e.Range.Len() }

// Change describes what an applied edit re-derived.
type Change struct {
	// OldWindow is the re-scanned span in the previous document's coordinates.
	OldWindow Range
	// NewWindow is the same span in the new document's coordinates.
	NewWindow Range
	Delta     int
	Full      bool
	// Reason is set when the driver fell back to a full parse.
	Reason string
}

// Apply runs one edit through the incremental driver and returns the next
// revision. d itself is never modified. An error is returned only for
// out-of-range edits or when even a full parse breaks an invariant.
func (d *Document) Apply(e Edit) (*Document, Change, error) {
	if e.Range.Start < 0 || e.Range.End > len(d.text) || e.Range.Start > e.Range.End {
		limit := len(d.text)
		value := e.Range.Start
		if value >= 0 && value <= limit {
			value = e.Range.End
		}
		return nil, Change{}, &BoundsError{What: "edit offset", Value: value, Limit: limit}
	}
	text := d.text[:e.Range.Start] + e.Text + d.text[e.Range.End:]

	next, change, err := d.reparse(text, e)
	if err == nil {
		err = checkSplice(next)
	}
	if err != nil {
		reason := err.Error()
		next, change = d.reparseFull(text, e.Delta(), reason)
		if err := next.Validate(); err != nil {
			return nil, Change{}, err
		}
	}
	return next, change, nil
}

// Reparse re-derives the whole document from text while carrying ids over
// from d wherever blocks are unchanged. It is the recovery path for invariant
// violations and the implementation of explicit refreshes.
func (d *Document) Reparse(text string) (*Document, Change, error) {
	next, change := d.reparseFull(text, len(text)-len(d.text), "requested")
	if err := next.Validate(); err != nil {
		return nil, Change{}, err
	}
	return next, change, nil
}

func (d *Document) reparseFull(text string, delta int, reason string) (*Document, Change) {
	next := d.successor(text)
	fresh := buildBlocks(scanBlocks(splitLines(text, 0), d.opts.TabWidth))
	reuseIDs(d.text, d.blocks, text, fresh)
	next.blocks = fresh
	next.assignFreshIDs(next.blocks)
	next.reindex()
	return next, Change{
		OldWindow: Range{Start: 0, End: len(d.text)},
		NewWindow: Range{Start: 0, End: len(text)},
		Delta:     delta,
		Full:      true,
		Reason:    reason,
	}
}

func (d *Document) successor(text string) *Document {
	return &Document{
		text:     text,
		revision: d.revision + 1,
		nextID:   d.nextID,
		opts:     d.opts,
	}
}

// reparse re-scans the top-level blocks touched by the edit plus one block
// on each side. The window grows forward until the last re-scanned block
// matches the shifted old block it replaces, which proves the scan beyond the
// window would be unchanged.
func (d *Document) reparse(text string, e Edit) (*Document, Change, error) {
	old := d.blocks
	n := len(old)
	delta := e.Delta()
	a, b := e.Range.Start, e.Range.End

	first := sort.Search(n, func(i int) bool { return old[i].SourceRange().End >= a })
	last := sort.Search(n, func(i int) bool { return old[i].SourceRange().Start > b }) - 1
	if last < first {
		last = first
	}
	i0 := first - 1
	if i0 < 0 {
		i0 = 0
	}
	ws := 0
	if i0 > 0 {
		ws = old[i0].SourceRange().Start
	}

	j1 := min(last+2, n)
	step := 1
	var window []Block
	for attempt := 0; ; attempt++ {
		if attempt > maxWindowExtensions {
			return nil, Change{}, parseFailuref("re-scan window did not converge after %d extensions", maxWindowExtensions)
		}
		we := len(d.text)
		if j1 < n {
			we = old[j1].SourceRange().Start
		}
		if we < b {
			we = b
		}
		window = buildBlocks(scanBlocks(splitLines(text[ws:we+delta], ws), d.opts.TabWidth))
		if j1 == n || converged(d.text, old, j1, text, window, delta) {
			break
		}
		if cb, ok := window[len(window)-1].(*CodeBlock); ok && !cb.Closed {
			j1 = n
			continue
		}
		j1 = min(j1+step, n)
		step *= 2
	}

	we := len(d.text)
	if j1 < n {
		we = old[j1].SourceRange().Start
	}
	if we < b {
		we = b
	}

	reuseIDs(d.text, old[i0:j1], text, window)

	next := d.successor(text)
	blocks := make([]Block, 0, i0+len(window)+n-j1)
	blocks = append(blocks, old[:i0]...)
	blocks = append(blocks, window...)
	for _, blk := range old[j1:] {
		blocks = append(blocks, shiftBlock(blk, delta))
	}
	next.blocks = blocks
	next.assignFreshIDs(window)
	next.reindex()
	return next, Change{
		OldWindow: Range{Start: ws, End: we},
		NewWindow: Range{Start: ws, End: we + delta},
		Delta:     delta,
	}, nil
}

// converged reports whether the window's last block equals old[j1-1] moved
// by delta.
func converged(oldText string, old []Block, j1 int, newText string, window []Block, delta int) bool {
	if len(window) == 0 {
		return true
	}
	return sameBlock(oldText, old[j1-1], newText, window[len(window)-1], delta)
}

func sameBlock(oldText string, a Block, newText string, b Block, delta int) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	ar, br := a.SourceRange(), b.SourceRange()
	if ar.Shift(delta) != br {
		return false
	}
	if oldText[ar.Start:ar.End] != newText[br.Start:br.End] {
		return false
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !sameBlock(oldText, ac[i], newText, bc[i], delta) {
			return false
		}
	}
	return true
}

// reuseIDs copies ids from old blocks to new blocks at the same tree
// position whose kind and literal source text are byte-identical. Positions
// are paired by common prefix, then common suffix, then index order within
// the remaining middle. Paired blocks recurse into their children even when
// their own text differs.
func reuseIDs(oldText string, old []Block, newText string, fresh []Block) {
	for _, pair := range alignBlocks(oldText, old, newText, fresh) {
		o, f := old[pair[0]], fresh[pair[1]]
		if o.Kind() != f.Kind() {
			continue
		}
		if literal(oldText, o) == literal(newText, f) {
			f.node().ID = o.NodeID()
		}
		reuseIDs(oldText, o.Children(), newText, f.Children())
	}
}

func alignBlocks(oldText string, old []Block, newText string, fresh []Block) [][2]int {
	same := func(i, j int) bool {
		return old[i].Kind() == fresh[j].Kind() && literal(oldText, old[i]) == literal(newText, fresh[j])
	}
	var pairs [][2]int
	lo := 0
	for lo < len(old) && lo < len(fresh) && same(lo, lo) {
		pairs = append(pairs, [2]int{lo, lo})
		lo++
	}
	oi, fi := len(old), len(fresh)
	var tail [][2]int
	for oi > lo && fi > lo && same(oi-1, fi-1) {
		oi--
		fi--
		tail = append(tail, [2]int{oi, fi})
	}
	for k := 0; lo+k < oi && lo+k < fi; k++ {
		pairs = append(pairs, [2]int{lo + k, lo + k})
	}
	for k := len(tail) - 1; k >= 0; k-- {
		pairs = append(pairs, tail[k])
	}
	return pairs
}

func literal(text string, b Block) string {
	r := b.SourceRange()
	return text[r.Start:r.End]
}

// shiftBlock deep-copies b with every range moved by delta. Blocks after the
// edit are copied so the previous Document keeps its own coordinates.
func shiftBlock(b Block, delta int) Block {
	switch blk := b.(type) {
	case *Heading:
		c := *blk
		c.Range = c.Range.Shift(delta)
		c.Content = c.Content.Shift(delta)
		c.Inlines = shiftInlines(c.Inlines, delta)
		return &c
	case *Paragraph:
		c := *blk
		c.Range = c.Range.Shift(delta)
		c.Content = c.Content.Shift(delta)
		c.Inlines = shiftInlines(c.Inlines, delta)
		return &c
	case *ListItem:
		c := *blk
		c.Range = c.Range.Shift(delta)
		c.Content = c.Content.Shift(delta)
		c.Inlines = shiftInlines(c.Inlines, delta)
		c.Items = shiftBlocks(c.Items, delta)
		return &c
	case *CodeBlock:
		c := *blk
		c.Range = c.Range.Shift(delta)
		c.LineEnds = make([]int, len(blk.LineEnds))
		for i, end := range blk.LineEnds {
			c.LineEnds[i] = end + delta
		}
		return &c
	case *Blockquote:
		c := *blk
		c.Range = c.Range.Shift(delta)
		c.Blocks = shiftBlocks(c.Blocks, delta)
		return &c
	case *Table:
		c := *blk
		c.Range = c.Range.Shift(delta)
		c.Header = shiftRow(c.Header, delta)
		c.Separator = c.Separator.Shift(delta)
		c.Rows = make([]TableRow, len(blk.Rows))
		for i, row := range blk.Rows {
			c.Rows[i] = shiftRow(row, delta)
		}
		return &c
	case *ThematicBreak:
		c := *blk
		c.Range = c.Range.Shift(delta)
		return &c
	default:
		panic(fmt.Sprintf("markdown: unknown block %T", b))
	}
}

func shiftBlocks(blocks []Block, delta int) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = shiftBlock(b, delta)
	}
	return out
}

func shiftRow(row TableRow, delta int) TableRow {
	out := TableRow{Range: row.Range.Shift(delta), Cells: make([]TableCell, len(row.Cells))}
	for i, cell := range row.Cells {
		out.Cells[i] = TableCell{Range: cell.Range.Shift(delta), Inlines: shiftInlines(cell.Inlines, delta)}
	}
	return out
}

func shiftInlines(inlines []Inline, delta int) []Inline {
	if inlines == nil {
		return nil
	}
	out := make([]Inline, len(inlines))
	for i, in := range inlines {
		in.Range = in.Range.Shift(delta)
		in.Children = shiftInlines(in.Children, delta)
		out[i] = in
	}
	return out
}
