// Package engine is the single owner of the document, its preview and the
// view state. The UI layer drives it with edits and cursor movements and
// reads back positions; it never touches the document directly.
package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kk-code-lab/markln/internal/logging"
	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/render"
	"github.com/kk-code-lab/markln/internal/syncview"
)

// LineRange is a half-open range of render line indexes.
type LineRange struct {
	Start int
	End   int
}

// Empty reports whether the range covers no lines.
func (r LineRange) Empty() bool { return r.End <= r.Start }

// UpdateSummary reports the outcome of one pipeline run.
type UpdateSummary struct {
	Revision uint64
	TOC      []markdown.TOCEntry
	// Stale is the range of lines in the new index that differ from what
	// the previous index showed for the same text.
	Stale LineRange
	// Full is set when the whole document was re-parsed.
	Full   bool
	Reason string
	// PreviewDeferred is set when auto preview is off and the index still
	// shows an older revision.
	PreviewDeferred bool
	View            syncview.State
}

// Engine runs the edit pipeline: re-parse, table of contents, render and
// sync. Each step works on new values; state is swapped in only after every
// step succeeded, so a rejected edit leaves the engine unchanged.
type Engine struct {
	doc      *markdown.Document
	ix       *render.Index
	toc      []markdown.TOCEntry
	renderer *render.Renderer
	sync     *syncview.Coordinator
	log      *log.Logger

	parseOpts  markdown.Options
	renderOpts render.Options
	initMode   syncview.Mode

	autoPreview  bool
	previewStale bool
	savedText    string
}

// New parses text and renders its first preview.
func New(text string, opts ...Option) *Engine {
	e := &Engine{
		autoPreview: true,
		log:         logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.renderer = render.NewRenderer(e.renderOpts)
	e.doc = markdown.Parse(text, e.parseOpts)
	e.ix = e.renderer.Render(e.doc)
	e.toc = markdown.ExtractTOC(e.doc)
	e.sync = syncview.New(e.doc, e.ix)
	e.sync.SetMode(e.initMode)
	e.savedText = text
	e.log.Debug("document loaded",
		logging.FieldBytes, len(text),
		logging.FieldBlocks, len(e.doc.Blocks()),
		logging.FieldLines, e.ix.Len())
	return e
}

func (e *Engine) Document() *markdown.Document { return e.doc }
func (e *Engine) Index() *render.Index          { return e.ix }
func (e *Engine) Text() string                  { return e.doc.Text() }
func (e *Engine) Revision() uint64              { return e.doc.Revision() }
func (e *Engine) View() syncview.State          { return e.sync.State() }
func (e *Engine) Mode() syncview.Mode           { return e.sync.Mode() }
func (e *Engine) AutoPreview() bool             { return e.autoPreview }
func (e *Engine) PreviewStale() bool            { return e.previewStale }
func (e *Engine) DisplayWidth() int             { return e.renderer.Options().Width }

// TOC returns the outline of the current revision. The slice is replaced,
// never modified, when the document changes.
func (e *Engine) TOC() []markdown.TOCEntry { return e.toc }

// ApplyEdit replaces r with text and runs the whole pipeline.
func (e *Engine) ApplyEdit(r markdown.Range, text string) (UpdateSummary, error) {
	started := time.Now()
	edit := markdown.Edit{Range: r, Text: text}
	next, change, err := e.doc.Apply(edit)
	if err != nil {
		e.log.Warn("edit rejected",
			logging.FieldError, err,
			logging.FieldOffset, r.Start,
			logging.FieldRevision, e.doc.Revision())
		return UpdateSummary{}, err
	}
	return e.commit(next, change, &edit, started)
}

// SetText replaces the whole document, keeping ids of unchanged blocks. The
// cursor stays on its block when that block survived.
func (e *Engine) SetText(text string) (UpdateSummary, error) {
	started := time.Now()
	next, change, err := e.doc.Reparse(text)
	if err != nil {
		e.log.Warn("reload rejected", logging.FieldError, err)
		return UpdateSummary{}, err
	}
	return e.commit(next, change, nil, started)
}

func (e *Engine) commit(next *markdown.Document, change markdown.Change, edit *markdown.Edit, started time.Time) (UpdateSummary, error) {
	if change.Full {
		e.log.Debug("full re-parse",
			logging.FieldReason, change.Reason,
			logging.FieldRevision, next.Revision())
	}

	toc := markdown.ExtractTOC(next)
	ix := e.ix
	deferred := !e.autoPreview
	if !deferred {
		ix = e.renderer.Render(next)
		if err := verifyIndex(ix, next); err != nil {
			e.log.Warn("edit rejected", logging.FieldError, err, logging.FieldRevision, next.Revision())
			return UpdateSummary{}, err
		}
	}

	e.doc = next
	e.ix = ix
	e.toc = toc
	e.previewStale = e.previewStale || deferred
	if edit != nil {
		e.sync.ShiftForEdit(*edit)
	}
	e.sync.OnDocumentUpdated(next, ix)

	summary := UpdateSummary{
		Revision:        next.Revision(),
		TOC:             toc,
		Full:            change.Full,
		Reason:          change.Reason,
		PreviewDeferred: deferred,
		View:            e.sync.State(),
	}
	if !deferred {
		summary.Stale = e.staleLines(change)
	}
	e.log.Debug("edit applied",
		logging.FieldRevision, next.Revision(),
		logging.FieldWindow, fmt.Sprintf("[%d,%d)", change.NewWindow.Start, change.NewWindow.End),
		logging.FieldElapsed, time.Since(started))
	return summary, nil
}

// InsertSnippet inserts the named snippet at the cursor.
func (e *Engine) InsertSnippet(name string) (UpdateSummary, error) {
	snip, ok := markdown.SnippetByName(name)
	if !ok {
		return UpdateSummary{}, fmt.Errorf("%q: %w", name, ErrUnknownSnippet)
	}
	cur := e.sync.State().Cursor
	return e.ApplyEdit(markdown.Range{Start: cur, End: cur}, snip.Text)
}

// SetDisplayWidth re-renders the preview at width columns.
func (e *Engine) SetDisplayWidth(width int) UpdateSummary {
	e.renderer.SetWidth(width)
	e.log.Debug("display width changed", logging.FieldWidth, e.renderer.Options().Width)
	return e.rerender("width")
}

// RefreshPreview renders the current revision, catching up after edits made
// with auto preview off.
func (e *Engine) RefreshPreview() UpdateSummary {
	return e.rerender("refresh")
}

// SetAutoPreview switches immediate rendering on or off. Switching it on
// renders any pending revision.
func (e *Engine) SetAutoPreview(on bool) {
	e.autoPreview = on
	if on && e.previewStale {
		e.rerender("auto preview")
	}
}

func (e *Engine) rerender(reason string) UpdateSummary {
	e.ix = e.renderer.Render(e.doc)
	e.previewStale = false
	e.sync.OnIndexUpdated(e.ix)
	return UpdateSummary{
		Revision: e.doc.Revision(),
		TOC:      e.toc,
		Stale:    LineRange{Start: 0, End: e.ix.Len()},
		Full:     true,
		Reason:   reason,
		View:     e.sync.State(),
	}
}

// ResolvePreviewPosition returns the render line showing offset.
func (e *Engine) ResolvePreviewPosition(offset int) (int, error) {
	return e.sync.PreviewTarget(offset)
}

// ResolveSourcePosition returns the source range behind render line line.
func (e *Engine) ResolveSourcePosition(line int) (markdown.Range, error) {
	return e.ix.SourceRange(line)
}

// SetSyncMode switches the sync mode.
func (e *Engine) SetSyncMode(m syncview.Mode) {
	e.sync.SetMode(m)
	e.log.Debug("sync mode changed", logging.FieldMode, m)
}

// CycleMode advances Synced, EditorOnly, PreviewOnly in turn.
func (e *Engine) CycleMode() syncview.Mode {
	m := e.sync.CycleMode()
	e.log.Debug("sync mode changed", logging.FieldMode, m)
	return m
}

// Resync scrolls the preview to the cursor in any mode.
func (e *Engine) Resync() syncview.State {
	e.sync.Resync()
	return e.sync.State()
}

// MoveCursor records the editor cursor.
func (e *Engine) MoveCursor(offset int) (syncview.State, error) {
	err := e.sync.OnCursorMove(offset)
	return e.sync.State(), err
}

// ScrollEditor records the editor's top offset.
func (e *Engine) ScrollEditor(top int) (syncview.State, error) {
	err := e.sync.OnEditorScroll(top)
	return e.sync.State(), err
}

// ScrollPreview records the preview's top line.
func (e *Engine) ScrollPreview(line int) (syncview.State, error) {
	err := e.sync.OnPreviewScroll(line)
	return e.sync.State(), err
}

// SetViewport records the preview height in rows.
func (e *Engine) SetViewport(rows int) {
	e.sync.SetViewport(rows)
}

// JumpToTOCEntry moves the cursor to the heading id and returns its offset.
func (e *Engine) JumpToTOCEntry(id markdown.NodeID) (int, error) {
	b, ok := e.doc.Find(id)
	if !ok {
		return 0, markdown.StaleReference(id)
	}
	offset := b.SourceRange().Start
	if err := e.sync.OnCursorMove(offset); err != nil {
		return 0, err
	}
	if e.sync.Mode() != syncview.Synced {
		e.sync.Resync()
	}
	e.log.Debug("jump to heading", logging.FieldNode, id, logging.FieldOffset, offset)
	return offset, nil
}

// Modified reports whether the text differs from the last saved text.
func (e *Engine) Modified() bool {
	return e.doc.Text() != e.savedText
}

// MarkSaved records the current text as saved.
func (e *Engine) MarkSaved() {
	e.savedText = e.doc.Text()
}

// staleLines maps the re-parsed window onto the new index. Lines outside it
// show the same blocks as before, possibly at shifted positions.
func (e *Engine) staleLines(change markdown.Change) LineRange {
	if change.Full {
		return LineRange{Start: 0, End: e.ix.Len()}
	}
	lo, hi := e.ix.Span(change.NewWindow)
	return LineRange{Start: lo, End: hi}
}

// verifyIndex is checkIndex, replaceable in tests.
var verifyIndex = checkIndex

// checkIndex verifies the ordering the sync lookups rely on.
func checkIndex(ix *render.Index, doc *markdown.Document) error {
	if ix.DocumentLen() != doc.Len() {
		return &markdown.ParseFailure{Reason: fmt.Sprintf("index covers %d bytes, document has %d", ix.DocumentLen(), doc.Len())}
	}
	prevStart, prevEnd := 0, 0
	for i, l := range ix.Lines() {
		if l.Source.Start < prevStart || l.Source.End < prevEnd || l.Source.End > doc.Len() {
			return &markdown.ParseFailure{Reason: fmt.Sprintf("render line %d source %d-%d out of order", i, l.Source.Start, l.Source.End)}
		}
		prevStart, prevEnd = l.Source.Start, l.Source.End
	}
	return nil
}
