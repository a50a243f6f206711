package markdown

// Validate checks the structural invariants of the tree: every range lies
// inside the text, children lie inside their parent, siblings are ordered and
// disjoint, inline spans stay inside their block and ids are unique and
// non-zero. A violation is reported as *ParseFailure.
func (d *Document) Validate() error {
	seen := make(map[NodeID]struct{})
	return validateBlocks(d.blocks, Range{Start: 0, End: len(d.text)}, seen)
}

func validateBlocks(blocks []Block, parent Range, seen map[NodeID]struct{}) error {
	prevEnd := parent.Start
	for _, b := range blocks {
		r := b.SourceRange()
		id := b.NodeID()
		if id == 0 {
			return parseFailuref("%s block at %d has no id", b.Kind(), r.Start)
		}
		if _, dup := seen[id]; dup {
			return parseFailuref("duplicate id %s", id)
		}
		seen[id] = struct{}{}
		if r.Empty() {
			return parseFailuref("%s %s has empty range [%d,%d)", b.Kind(), id, r.Start, r.End)
		}
		if !parent.ContainsRange(r) {
			return parseFailuref("%s %s range [%d,%d) escapes parent [%d,%d)", b.Kind(), id, r.Start, r.End, parent.Start, parent.End)
		}
		if r.Start < prevEnd {
			return parseFailuref("%s %s overlaps its previous sibling at %d", b.Kind(), id, r.Start)
		}
		prevEnd = r.End
		if err := validateInlines(blockInlines(b), r); err != nil {
			return err
		}
		if t, ok := b.(*Table); ok {
			if err := validateTable(t); err != nil {
				return err
			}
		}
		if err := validateBlocks(b.Children(), r, seen); err != nil {
			return err
		}
	}
	return nil
}

func validateInlines(inlines []Inline, parent Range) error {
	prevEnd := parent.Start
	for _, in := range inlines {
		if !parent.ContainsRange(in.Range) {
			return parseFailuref("%s span [%d,%d) escapes [%d,%d)", in.Kind, in.Range.Start, in.Range.End, parent.Start, parent.End)
		}
		if in.Range.Start < prevEnd {
			return parseFailuref("%s span at %d overlaps its previous sibling", in.Kind, in.Range.Start)
		}
		prevEnd = in.Range.End
		if err := validateInlines(in.Children, in.Range); err != nil {
			return err
		}
	}
	return nil
}

func validateTable(t *Table) error {
	rows := append([]TableRow{t.Header}, t.Rows...)
	for _, row := range rows {
		if !t.Range.ContainsRange(row.Range) {
			return parseFailuref("table %s row [%d,%d) escapes the table", t.ID, row.Range.Start, row.Range.End)
		}
		if len(row.Cells) != len(t.Align) {
			return parseFailuref("table %s row has %d cells, want %d", t.ID, len(row.Cells), len(t.Align))
		}
		for _, cell := range row.Cells {
			if err := validateInlines(cell.Inlines, cell.Range); err != nil {
				return err
			}
		}
	}
	return nil
}

func blockInlines(b Block) []Inline {
	switch blk := b.(type) {
	case *Heading:
		return blk.Inlines
	case *Paragraph:
		return blk.Inlines
	case *ListItem:
		return blk.Inlines
	}
	return nil
}
