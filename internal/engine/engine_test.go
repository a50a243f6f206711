package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/markln/internal/logging"
	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/render"
	"github.com/kk-code-lab/markln/internal/syncview"
)

const sample = "# One\n\nfirst paragraph\n\n## Two\n\nsecond paragraph\n\n## Three\n\nthird paragraph\n"

func newEngine(t *testing.T, text string, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithLogger(logging.Discard()),
		WithRenderOptions(render.Options{Width: 40}),
	}
	return New(text, append(base, opts...)...)
}

func TestNewBuildsDocumentTOCAndPreview(t *testing.T) {
	e := newEngine(t, "# Title\n\nHello *world*\n")

	blocks := e.Document().Blocks()
	require.Len(t, blocks, 2)
	require.Equal(t, markdown.BlockHeading, blocks[0].Kind())
	require.Equal(t, markdown.BlockParagraph, blocks[1].Kind())

	toc := e.TOC()
	require.Len(t, toc, 1)
	require.Equal(t, "Title", toc[0].Text)
	require.Equal(t, 1, toc[0].Level)

	require.Equal(t, 3, e.Index().Len())
	require.Equal(t, syncview.Synced, e.Mode())
	require.False(t, e.Modified())
}

func TestApplyEditKeepsUntouchedIdentity(t *testing.T) {
	e := newEngine(t, "# Title\n\nHello *world*\n")
	before := e.Document().Blocks()
	heading, para := before[0], before[1]

	summary, err := e.ApplyEdit(markdown.Range{Start: 5, End: 5}, "x")
	require.NoError(t, err)
	require.Equal(t, e.Revision(), summary.Revision)
	require.Equal(t, "# Titxle\n\nHello *world*\n", e.Text())

	after := e.Document().Blocks()
	require.Len(t, after, 2)
	require.Equal(t, heading.SourceRange().Len()+1, after[0].SourceRange().Len())
	require.Equal(t, para.NodeID(), after[1].NodeID())
	require.Equal(t, para.SourceRange().Shift(1), after[1].SourceRange())

	require.Equal(t, "Titxle", summary.TOC[0].Text)
	require.False(t, summary.Stale.Empty())
	require.Equal(t, 0, summary.Stale.Start)
	require.True(t, e.Modified())
}

func TestUnterminatedFenceHasNoTOC(t *testing.T) {
	e := newEngine(t, "# Real\n")
	_, err := e.SetText("```\n# not a heading\n")
	require.NoError(t, err)

	blocks := e.Document().Blocks()
	require.Len(t, blocks, 1)
	require.Equal(t, markdown.BlockCode, blocks[0].Kind())
	require.Equal(t, e.Document().Len(), blocks[0].SourceRange().End)
	require.Empty(t, e.TOC())
}

func TestRejectedEditLeavesStateUnchanged(t *testing.T) {
	e := newEngine(t, sample)
	_, err := e.MoveCursor(10)
	require.NoError(t, err)
	rev, ix, text := e.Revision(), e.Index(), e.Text()

	_, err = e.ApplyEdit(markdown.Range{Start: 5, End: len(sample) + 3}, "x")
	require.ErrorIs(t, err, markdown.ErrOutOfBounds)
	_, err = e.ApplyEdit(markdown.Range{Start: -1, End: 0}, "x")
	require.ErrorIs(t, err, markdown.ErrOutOfBounds)

	require.Equal(t, rev, e.Revision())
	require.Same(t, ix, e.Index())
	require.Equal(t, text, e.Text())
	require.Equal(t, 10, e.View().Cursor)
}

func TestBrokenIndexRejectsEditAndKeepsState(t *testing.T) {
	orig := verifyIndex
	t.Cleanup(func() { verifyIndex = orig })
	verifyIndex = func(*render.Index, *markdown.Document) error {
		return &markdown.ParseFailure{Reason: "render line 3 out of order"}
	}

	e := newEngine(t, sample)
	_, err := e.MoveCursor(10)
	require.NoError(t, err)
	rev, ix, toc, text := e.Revision(), e.Index(), e.TOC(), e.Text()

	_, err = e.ApplyEdit(markdown.Range{Start: 2, End: 2}, "# New\n\n")
	require.ErrorIs(t, err, markdown.ErrParseFailure)
	var failure *markdown.ParseFailure
	require.ErrorAs(t, err, &failure)
	require.Contains(t, failure.Reason, "out of order")

	require.Equal(t, rev, e.Revision())
	require.Same(t, ix, e.Index())
	require.Equal(t, toc, e.TOC())
	require.Equal(t, text, e.Text())
	require.Equal(t, 10, e.View().Cursor)
	require.False(t, e.Modified())

	verifyIndex = orig
	summary, err := e.ApplyEdit(markdown.Range{Start: 2, End: 2}, "x")
	require.NoError(t, err)
	require.Equal(t, rev+1, summary.Revision)
}

func TestCheckIndexDetectsMismatch(t *testing.T) {
	doc := markdown.Parse(sample, markdown.Options{})
	r := render.NewRenderer(render.Options{Width: 40})
	require.NoError(t, checkIndex(r.Render(doc), doc))

	other := markdown.Parse(sample+"tail\n", markdown.Options{})
	err := checkIndex(r.Render(doc), other)
	require.ErrorIs(t, err, markdown.ErrParseFailure)
}

func TestPositionResolutionRoundTrips(t *testing.T) {
	e := newEngine(t, sample)
	for off := 0; off <= e.Document().Len(); off++ {
		line, err := e.ResolvePreviewPosition(off)
		require.NoError(t, err)
		rng, err := e.ResolveSourcePosition(line)
		require.NoError(t, err)
		again, err := e.ResolvePreviewPosition(rng.Start)
		require.NoError(t, err)
		require.Equal(t, line, again, "offset %d", off)
	}

	_, err := e.ResolveSourcePosition(e.Index().Len())
	require.ErrorIs(t, err, markdown.ErrOutOfBounds)
	_, err = e.ResolvePreviewPosition(len(sample) + 1)
	require.ErrorIs(t, err, markdown.ErrOutOfBounds)
}

func TestCursorFollowsThroughEdits(t *testing.T) {
	e := newEngine(t, sample)
	cursor := strings.Index(sample, "third")
	_, err := e.MoveCursor(cursor)
	require.NoError(t, err)

	summary, err := e.ApplyEdit(markdown.Range{Start: 0, End: 0}, "intro\n\n")
	require.NoError(t, err)
	require.Equal(t, cursor+7, summary.View.Cursor)

	want, err := e.ResolvePreviewPosition(summary.View.Cursor)
	require.NoError(t, err)
	require.Equal(t, want, summary.View.PreviewTop)
}

func TestJumpToTOCEntry(t *testing.T) {
	e := newEngine(t, sample)
	toc := e.TOC()
	require.Len(t, toc, 3)

	offset, err := e.JumpToTOCEntry(toc[2].ID)
	require.NoError(t, err)
	require.Equal(t, strings.Index(sample, "## Three"), offset)
	require.Equal(t, offset, e.View().Cursor)

	start := strings.Index(sample, "## Two")
	_, err = e.ApplyEdit(markdown.Range{Start: start, End: start + len("## Two\n")}, "")
	require.NoError(t, err)
	require.Len(t, e.TOC(), 2)

	_, err = e.JumpToTOCEntry(toc[1].ID)
	require.ErrorIs(t, err, markdown.ErrStaleReference)
}

func TestJumpScrollsPreviewOutsideSyncedMode(t *testing.T) {
	e := newEngine(t, sample, WithMode(syncview.EditorOnly))
	toc := e.TOC()
	offset, err := e.JumpToTOCEntry(toc[2].ID)
	require.NoError(t, err)
	want, _ := e.ResolvePreviewPosition(offset)
	require.Equal(t, want, e.View().PreviewTop)
}

func TestDeferredPreview(t *testing.T) {
	e := newEngine(t, sample, WithAutoPreview(false))
	ix := e.Index()

	summary, err := e.ApplyEdit(markdown.Range{Start: 0, End: 0}, "# Zero\n\n")
	require.NoError(t, err)
	require.True(t, summary.PreviewDeferred)
	require.True(t, summary.Stale.Empty())
	require.Same(t, ix, e.Index())
	require.True(t, e.PreviewStale())
	require.Len(t, summary.TOC, 4)

	refreshed := e.RefreshPreview()
	require.False(t, e.PreviewStale())
	require.NotSame(t, ix, e.Index())
	require.Equal(t, LineRange{Start: 0, End: e.Index().Len()}, refreshed.Stale)
	require.Equal(t, e.Document().Len(), e.Index().DocumentLen())

	_, err = e.ApplyEdit(markdown.Range{Start: 0, End: 0}, "x")
	require.NoError(t, err)
	require.True(t, e.PreviewStale())
	e.SetAutoPreview(true)
	require.False(t, e.PreviewStale())
	require.Equal(t, e.Document().Len(), e.Index().DocumentLen())
}

func TestSetDisplayWidthRerenders(t *testing.T) {
	e := newEngine(t, "one two three four five six seven eight nine ten\n")
	require.Equal(t, 2, e.Index().Len())

	summary := e.SetDisplayWidth(10)
	require.Equal(t, 10, e.DisplayWidth())
	require.Greater(t, e.Index().Len(), 2)
	require.Equal(t, e.Index().Len(), summary.Stale.End)
	for _, l := range e.Index().Lines() {
		require.LessOrEqual(t, l.Width(), 10)
	}
}

func TestInsertSnippetAtCursor(t *testing.T) {
	e := newEngine(t, "")
	summary, err := e.InsertSnippet("Header 2")
	require.NoError(t, err)
	require.Equal(t, "## Header", e.Text())
	require.Len(t, summary.TOC, 1)
	require.Equal(t, len("## Header"), summary.View.Cursor)

	_, err = e.InsertSnippet("Nope")
	require.ErrorIs(t, err, ErrUnknownSnippet)
}

func TestModifiedTracksSavedText(t *testing.T) {
	e := newEngine(t, "abc\n")
	_, err := e.ApplyEdit(markdown.Range{Start: 3, End: 3}, "d")
	require.NoError(t, err)
	require.True(t, e.Modified())
	e.MarkSaved()
	require.False(t, e.Modified())
	_, err = e.ApplyEdit(markdown.Range{Start: 3, End: 4}, "")
	require.NoError(t, err)
	require.True(t, e.Modified())
}

func TestModeSwitching(t *testing.T) {
	e := newEngine(t, sample)
	require.Equal(t, syncview.EditorOnly, e.CycleMode())
	_, err := e.MoveCursor(strings.Index(sample, "## Three"))
	require.NoError(t, err)
	require.Equal(t, 0, e.View().PreviewTop)

	state := e.Resync()
	want, _ := e.ResolvePreviewPosition(state.Cursor)
	require.Equal(t, want, state.PreviewTop)

	e.SetSyncMode(syncview.PreviewOnly)
	require.Equal(t, syncview.PreviewOnly, e.Mode())
}

func TestEditsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	e := New(sample, WithLogger(logging.NewWithWriter(&buf, "debug")))
	_, err := e.ApplyEdit(markdown.Range{Start: 0, End: 0}, "x")
	require.NoError(t, err)
	require.Contains(t, buf.String(), "edit applied")

	_, err = e.ApplyEdit(markdown.Range{Start: 0, End: 1000}, "")
	require.Error(t, err)
	require.Contains(t, buf.String(), "edit rejected")
}
