package syncview

import (
	"strings"

	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/render"
)

// State is the view position shared by the two panes.
type State struct {
	// Cursor is the editor cursor as a byte offset into the document.
	Cursor int
	// EditorTop is the offset of the first visible editor line.
	EditorTop int
	// PreviewTop is the index of the first visible render line.
	PreviewTop int
	Mode       Mode
}

// Anchor pins an offset to the block containing it, so that it can be
// re-resolved after edits change the text before that block.
type Anchor struct {
	Node markdown.NodeID
	Rel  int
}

// Coordinator owns the view state. It reads the current document and render
// index but never changes them.
type Coordinator struct {
	state    State
	doc      *markdown.Document
	ix       *render.Index
	viewport int

	cursorAnchor  Anchor
	topAnchor     Anchor
	previewAnchor Anchor
}

// New starts at the top of doc in Synced mode.
func New(doc *markdown.Document, ix *render.Index) *Coordinator {
	c := &Coordinator{doc: doc, ix: ix}
	c.cursorAnchor = c.anchorFor(0)
	c.topAnchor = c.cursorAnchor
	c.previewAnchor = c.previewAnchorFor(0)
	return c
}

func (c *Coordinator) State() State { return c.state }
func (c *Coordinator) Mode() Mode   { return c.state.Mode }

// SetViewport records the preview pane height used to clamp scrolling.
// Zero means unknown; the preview may then scroll to its last line.
func (c *Coordinator) SetViewport(height int) {
	c.viewport = max(height, 0)
	c.setPreviewTop(c.state.PreviewTop)
}

// SetMode switches mode. Entering Synced aligns the preview with the cursor.
func (c *Coordinator) SetMode(m Mode) {
	prev := c.state.Mode
	c.state.Mode = m
	if m == Synced && prev != Synced {
		c.follow(c.state.Cursor)
	}
}

// CycleMode advances to the next mode and returns it.
func (c *Coordinator) CycleMode() Mode {
	c.SetMode(c.state.Mode.Next())
	return c.state.Mode
}

// OnCursorMove records the cursor. In Synced mode the preview scrolls to the
// line showing it.
func (c *Coordinator) OnCursorMove(offset int) error {
	if err := c.checkOffset(offset); err != nil {
		return err
	}
	c.state.Cursor = offset
	c.cursorAnchor = c.anchorFor(offset)
	if c.state.Mode == Synced {
		c.follow(offset)
	}
	return nil
}

// OnEditorScroll records the editor's top offset and mirrors it in Synced mode.
func (c *Coordinator) OnEditorScroll(top int) error {
	if err := c.checkOffset(top); err != nil {
		return err
	}
	c.state.EditorTop = top
	c.topAnchor = c.anchorFor(top)
	if c.state.Mode == Synced {
		c.follow(top)
	}
	return nil
}

// OnPreviewScroll records a preview scroll. In Synced mode the editor top
// follows to the source of that line.
func (c *Coordinator) OnPreviewScroll(line int) error {
	if _, err := c.ix.Line(line); err != nil {
		return err
	}
	c.setPreviewTop(line)
	if c.state.Mode == Synced {
		if rng, err := c.ix.SourceRange(c.state.PreviewTop); err == nil {
			c.state.EditorTop = rng.Start
			c.topAnchor = c.anchorFor(rng.Start)
		}
	}
	return nil
}

// ShiftForEdit moves the raw offsets across an edit. Offsets after the edit
// move by its delta; the cursor inside the edit lands after the new text and
// the editor top lands at its start.
func (c *Coordinator) ShiftForEdit(e markdown.Edit) {
	shift := func(off int, inside int) int {
		switch {
		case off >= e.Range.End:
			return off + e.Delta()
		case off > e.Range.Start:
			return inside
		default:
			return off
		}
	}
	c.state.Cursor = shift(c.state.Cursor, e.Range.Start+len(e.Text))
	c.state.EditorTop = shift(c.state.EditorTop, e.Range.Start)
}

// OnDocumentUpdated re-resolves the view against a new document and index.
// Positions whose block survived are resolved through the block, others
// through their raw offset.
func (c *Coordinator) OnDocumentUpdated(doc *markdown.Document, ix *render.Index) {
	c.doc = doc
	c.ix = ix
	c.state.Cursor = c.resolve(c.cursorAnchor, c.state.Cursor)
	c.state.EditorTop = c.resolve(c.topAnchor, c.state.EditorTop)
	c.cursorAnchor = c.anchorFor(c.state.Cursor)
	c.topAnchor = c.anchorFor(c.state.EditorTop)

	if c.state.Mode == Synced {
		c.follow(c.state.Cursor)
		return
	}
	top := c.state.PreviewTop
	if first, ok := ix.FirstLine(c.previewAnchor.Node); ok && c.previewAnchor.Node != 0 {
		top = first + c.previewAnchor.Rel
	}
	c.setPreviewTop(top)
}

// OnIndexUpdated swaps in a new render index for the same document, as after
// a width change.
func (c *Coordinator) OnIndexUpdated(ix *render.Index) {
	c.OnDocumentUpdated(c.doc, ix)
}

// Resync scrolls the preview to the cursor regardless of mode. When the
// cursor cannot be resolved the preview scrolls to the same proportional
// position the cursor has in the source.
func (c *Coordinator) Resync() {
	if line, err := c.PreviewTarget(c.state.Cursor); err == nil {
		c.setPreviewTop(line)
		return
	}
	c.setPreviewTop(c.proportionalTop())
}

// PreviewTarget is the render line that shows offset. It depends only on
// the current index, so repeated calls agree.
func (c *Coordinator) PreviewTarget(offset int) (int, error) {
	if c.ix.Len() == 0 {
		return 0, &markdown.BoundsError{What: "render line", Value: 0, Limit: 0}
	}
	return c.ix.LineAt(offset)
}

// MaxPreviewTop is the largest valid preview scroll position.
func (c *Coordinator) MaxPreviewTop() int {
	n := c.ix.Len()
	if c.viewport > 0 {
		return max(n-c.viewport, 0)
	}
	return max(n-1, 0)
}

func (c *Coordinator) follow(offset int) {
	if line, err := c.PreviewTarget(offset); err == nil {
		c.setPreviewTop(line)
	}
}

func (c *Coordinator) setPreviewTop(line int) {
	c.state.PreviewTop = min(max(line, 0), c.MaxPreviewTop())
	c.previewAnchor = c.previewAnchorFor(c.state.PreviewTop)
}

func (c *Coordinator) proportionalTop() int {
	text := c.doc.Text()
	total := strings.Count(text, "\n") + 1
	cursorLine := strings.Count(text[:min(c.state.Cursor, len(text))], "\n")
	return cursorLine * c.MaxPreviewTop() / total
}

func (c *Coordinator) checkOffset(offset int) error {
	if offset < 0 || offset > c.doc.Len() {
		return &markdown.BoundsError{What: "offset", Value: offset, Limit: c.doc.Len()}
	}
	return nil
}

// anchorFor pins offset to the innermost block containing it. Offsets in
// blank separator lines get no anchor and are tracked by their raw value.
func (c *Coordinator) anchorFor(offset int) Anchor {
	chain, err := c.doc.BlockAt(offset)
	if err != nil || len(chain) == 0 {
		return Anchor{}
	}
	b := chain[len(chain)-1]
	return Anchor{Node: b.NodeID(), Rel: offset - b.SourceRange().Start}
}

func (c *Coordinator) previewAnchorFor(line int) Anchor {
	l, err := c.ix.Line(line)
	if err != nil || l.Node == 0 {
		return Anchor{}
	}
	first, _ := c.ix.FirstLine(l.Node)
	return Anchor{Node: l.Node, Rel: line - first}
}

func (c *Coordinator) resolve(a Anchor, raw int) int {
	if a.Node != 0 {
		if b, ok := c.doc.Find(a.Node); ok {
			r := b.SourceRange()
			return min(max(r.Start+a.Rel, r.Start), r.End)
		}
	}
	return min(max(raw, 0), c.doc.Len())
}
