package markdown

import "sort"

// Options controls block scanning.
type Options struct {
	// TabWidth is the indentation width, in columns, of one list nesting level.
	TabWidth int
}

func (o Options) normalized() Options {
	if o.TabWidth <= 0 {
		o.TabWidth = defaultTabWidth
	}
	return o
}

// Document is an immutable parse of one revision of the text. Edits produce a
// new Document; the previous one stays valid until the caller drops it.
type Document struct {
	text     string
	blocks   []Block
	revision uint64
	nextID   NodeID
	opts     Options
	index    map[NodeID]Block
}

// Parse builds a Document from scratch. Ids are assigned sequentially in
// depth-first document order starting at 1.
func Parse(text string, opts Options) *Document {
	opts = opts.normalized()
	doc := &Document{text: text, opts: opts, nextID: 1}
	doc.blocks = buildBlocks(scanBlocks(splitLines(text, 0), opts.TabWidth))
	doc.assignFreshIDs(doc.blocks)
	doc.reindex()
	return doc
}

func (d *Document) Text() string     { return d.text }
func (d *Document) Len() int         { return len(d.text) }
func (d *Document) Blocks() []Block  { return d.blocks }
func (d *Document) Revision() uint64 { return d.revision }
func (d *Document) Options() Options { return d.opts }

// Slice returns the source text covered by r, clamped to the document.
func (d *Document) Slice(r Range) string {
	start := clamp(r.Start, 0, len(d.text))
	end := clamp(r.End, start, len(d.text))
	return d.text[start:end]
}

// Find returns the block carrying id.
func (d *Document) Find(id NodeID) (Block, bool) {
	b, ok := d.index[id]
	return b, ok
}

// BlockAt returns the chain of blocks containing offset, outermost first.
// Offsets in blank separator lines belong to no block and yield an empty chain.
func (d *Document) BlockAt(offset int) ([]Block, error) {
	if offset < 0 || offset > len(d.text) {
		return nil, &BoundsError{What: "offset", Value: offset, Limit: len(d.text)}
	}
	var chain []Block
	list := d.blocks
	for {
		idx := sort.Search(len(list), func(i int) bool { return list[i].SourceRange().End > offset })
		if idx >= len(list) || !list[idx].SourceRange().Contains(offset) {
			return chain, nil
		}
		chain = append(chain, list[idx])
		list = list[idx].Children()
	}
}

func (d *Document) reindex() {
	d.index = make(map[NodeID]Block)
	Walk(d.blocks, func(b Block, _ int) bool {
		d.index[b.NodeID()] = b
		return true
	})
}

func (d *Document) assignFreshIDs(blocks []Block) {
	Walk(blocks, func(b Block, _ int) bool {
		if b.node().ID == 0 {
			b.node().ID = d.nextID
			d.nextID++
		}
		return true
	})
}

// buildBlocks turns scanner tokens into blocks. A list item that directly
// follows another item (no blank line in between) with a greater depth
// becomes a child of that item.
func buildBlocks(tokens []token) []Block {
	var out []Block
	var open []*ListItem
	for _, tok := range tokens {
		if tok.afterBlank || tok.kind != BlockListItem {
			open = open[:0]
		}
		blk := buildBlock(tok)
		li, ok := blk.(*ListItem)
		if !ok {
			out = append(out, blk)
			continue
		}
		for len(open) > 0 && open[len(open)-1].Depth >= li.Depth {
			open = open[:len(open)-1]
		}
		if len(open) > 0 {
			parent := open[len(open)-1]
			parent.Items = append(parent.Items, li)
			for _, ancestor := range open {
				ancestor.Range.End = li.Range.End
			}
		} else {
			out = append(out, li)
		}
		open = append(open, li)
	}
	return out
}

func buildBlock(tok token) Block {
	node := Node{Range: tok.rng()}
	switch tok.kind {
	case BlockHeading:
		return &Heading{Node: node, Level: tok.level, Content: tok.content.full(), Inlines: parseInlines(tok.content)}
	case BlockListItem:
		return &ListItem{
			Node:    node,
			Ordered: tok.ordered,
			Number:  tok.number,
			Marker:  tok.marker,
			Depth:   tok.depth,
			Content: tok.content.full(),
			Inlines: parseInlines(tok.content),
		}
	case BlockCode:
		cb := &CodeBlock{Node: node, Info: tok.info, Lines: tok.codeLines, Closed: tok.closed}
		cb.LineEnds = append(cb.LineEnds, tok.lines[0].end)
		for i := range tok.codeLines {
			cb.LineEnds = append(cb.LineEnds, tok.lines[i+1].end)
		}
		return cb
	case BlockQuote:
		return &Blockquote{Node: node, Blocks: buildBlocks(tok.inner)}
	case BlockTable:
		return buildTable(node, tok)
	case BlockThematicBreak:
		return &ThematicBreak{Node: node}
	default:
		return &Paragraph{Node: node, Content: tok.content.full(), Inlines: parseInlines(tok.content)}
	}
}

func buildTable(node Node, tok token) *Table {
	t := &Table{Node: node, Align: tok.align}
	t.Header = buildRow(tok.lines[0], len(tok.align))
	sep := tok.lines[1]
	t.Separator = Range{Start: sep.start, End: sep.end}
	for _, line := range tok.lines[2:] {
		t.Rows = append(t.Rows, buildRow(line, len(tok.align)))
	}
	return t
}

// buildRow splits a row into exactly columns cells: extra cells are dropped
// and missing ones are empty.
func buildRow(line srcLine, columns int) TableRow {
	row := TableRow{Range: Range{Start: line.start, End: line.end}}
	spans := splitCells(line.text)
	tail := line.start + len(trimRightSpace(line.text))
	for i := 0; i < columns; i++ {
		if i >= len(spans) {
			row.Cells = append(row.Cells, TableCell{Range: Range{Start: tail, End: tail}})
			continue
		}
		sp := spans[i]
		m := contiguous(line.text[sp.lo:sp.hi], line.start+sp.lo)
		row.Cells = append(row.Cells, TableCell{Range: m.full(), Inlines: parseInlines(m)})
	}
	return row
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
