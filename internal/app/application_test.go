package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/markln/internal/config"
	"github.com/kk-code-lab/markln/internal/logging"
	"github.com/kk-code-lab/markln/internal/syncview"
)

const testDoc = "# One\n\nfirst paragraph\n\n## Two\n\nsecond paragraph\n"

func newTestApp(t *testing.T, content string) (*Application, tcell.SimulationScreen, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 20)
	app, err := New(screen, Options{Path: path, Config: config.Default(), Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app, screen, path
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func typeText(app *Application, text string) {
	for _, r := range text {
		app.handleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func screenRow(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(string(c.Runes))
	}
	return b.String()
}

func TestTypingUpdatesDocumentAndPreview(t *testing.T) {
	app, screen, _ := newTestApp(t, testDoc)
	typeText(app, "Z")
	if got := app.Engine().Text(); !strings.HasPrefix(got, "Z# One") {
		t.Fatalf("unexpected text %q", got)
	}
	if !app.Engine().Modified() {
		t.Fatalf("typing should mark the document modified")
	}

	app.handleEvent(key(tcell.KeyBackspace2))
	app.handleEvent(key(tcell.KeyEnd))
	typeText(app, "!")
	app.draw()

	row := screenRow(screen, 0)
	if !strings.Contains(row, "# One!") {
		t.Fatalf("editor row missing edit: %q", row)
	}
	half := app.layout.previewX
	if preview := row[len(row)-(80-half):]; !strings.Contains(preview, "One!") {
		t.Fatalf("preview row missing heading: %q", row)
	}
}

func TestSaveWritesFile(t *testing.T) {
	app, _, path := newTestApp(t, testDoc)
	typeText(app, "x")
	app.handleEvent(key(tcell.KeyCtrlS))
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "x"+testDoc {
		t.Fatalf("saved %q", got)
	}
	if app.Engine().Modified() {
		t.Fatalf("save should clear the modified flag")
	}
}

func TestQuitNeedsConfirmationWhenModified(t *testing.T) {
	app, _, _ := newTestApp(t, testDoc)
	typeText(app, "x")
	app.handleEvent(key(tcell.KeyCtrlQ))
	if app.shouldQuit {
		t.Fatalf("first Ctrl+Q with unsaved changes should only warn")
	}
	app.handleEvent(key(tcell.KeyCtrlQ))
	if !app.shouldQuit {
		t.Fatalf("second Ctrl+Q should quit")
	}
}

func TestCycleModeChangesLayout(t *testing.T) {
	app, _, _ := newTestApp(t, testDoc+strings.Repeat("\nmore text\n", 30))
	if app.layout.editorW == 0 || app.layout.previewW == 0 {
		t.Fatalf("synced mode should show both panes: %+v", app.layout)
	}
	app.handleEvent(key(tcell.KeyCtrlT))
	if app.Engine().Mode() != syncview.EditorOnly || app.layout.previewW != 0 {
		t.Fatalf("expected editor only, got %v %+v", app.Engine().Mode(), app.layout)
	}
	app.handleEvent(key(tcell.KeyCtrlT))
	if app.Engine().Mode() != syncview.PreviewOnly || app.layout.editorW != 0 || app.layout.previewW != 80 {
		t.Fatalf("expected preview only, got %v %+v", app.Engine().Mode(), app.layout)
	}
	if app.Engine().DisplayWidth() != 80 {
		t.Fatalf("preview should re-render at full width, got %d", app.Engine().DisplayWidth())
	}

	app.handleEvent(key(tcell.KeyDown))
	if app.Engine().View().PreviewTop != 1 {
		t.Fatalf("down should scroll the preview in preview mode, top=%d", app.Engine().View().PreviewTop)
	}
	if app.Engine().View().Cursor != 0 {
		t.Fatalf("preview scrolling should not move the cursor")
	}
}

func TestTOCOverlayJumps(t *testing.T) {
	app, _, _ := newTestApp(t, testDoc)
	app.handleEvent(key(tcell.KeyCtrlK))
	if app.overlay == nil || app.overlay.kind != overlayTOC || len(app.overlay.items) != 2 {
		t.Fatalf("expected TOC overlay with two entries, got %+v", app.overlay)
	}
	app.handleEvent(key(tcell.KeyDown))
	app.handleEvent(key(tcell.KeyEnter))
	if app.overlay != nil {
		t.Fatalf("overlay should close after choosing")
	}
	if got, want := app.Engine().View().Cursor, strings.Index(testDoc, "## Two"); got != want {
		t.Fatalf("cursor = %d, want %d", got, want)
	}
}

func TestSnippetOverlayInserts(t *testing.T) {
	app, _, _ := newTestApp(t, "")
	app.handleEvent(key(tcell.KeyCtrlG))
	app.handleEvent(key(tcell.KeyEnter))
	if got := app.Engine().Text(); got != "# Header" {
		t.Fatalf("unexpected text after snippet %q", got)
	}
	if len(app.Engine().TOC()) != 1 {
		t.Fatalf("snippet heading should appear in the outline")
	}
}

func TestCursorMovement(t *testing.T) {
	app, _, _ := newTestApp(t, "ab\n\tc\nlonger line\n")
	app.handleEvent(key(tcell.KeyEnd))
	if app.Engine().View().Cursor != 2 {
		t.Fatalf("End should go to line end, got %d", app.Engine().View().Cursor)
	}
	app.handleEvent(key(tcell.KeyDown))
	// Column 2 falls inside the tab, so the cursor stays before it.
	if app.Engine().View().Cursor != 3 {
		t.Fatalf("down into tab line: cursor %d", app.Engine().View().Cursor)
	}
	app.handleEvent(key(tcell.KeyDown))
	if app.Engine().View().Cursor != 8 {
		t.Fatalf("down should restore column 2, cursor %d", app.Engine().View().Cursor)
	}
	app.handleEvent(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModCtrl))
	if app.Engine().View().Cursor != 0 {
		t.Fatalf("Ctrl+Home should go to start")
	}
	app.handleEvent(key(tcell.KeyRight))
	app.handleEvent(key(tcell.KeyDelete))
	if app.Engine().Text() != "a\n\tc\nlonger line\n" {
		t.Fatalf("delete removed the wrong text: %q", app.Engine().Text())
	}
}

func TestResizeRerendersPreview(t *testing.T) {
	app, screen, _ := newTestApp(t, testDoc)
	screen.SetSize(40, 10)
	app.handleEvent(tcell.NewEventResize(40, 10))
	if app.layout.bodyH != 9 {
		t.Fatalf("body height = %d", app.layout.bodyH)
	}
	if app.Engine().DisplayWidth() != app.layout.previewW {
		t.Fatalf("display width %d, preview width %d", app.Engine().DisplayWidth(), app.layout.previewW)
	}
}

func TestMouseClickInPreviewMovesCursor(t *testing.T) {
	app, _, _ := newTestApp(t, testDoc)
	ix := app.Engine().Index()
	line, err := ix.LineAt(strings.Index(testDoc, "## Two"))
	if err != nil {
		t.Fatal(err)
	}
	app.handleEvent(tcell.NewEventMouse(app.layout.previewX+1, line, tcell.Button1, tcell.ModNone))
	if got, want := app.Engine().View().Cursor, strings.Index(testDoc, "## Two"); got != want {
		t.Fatalf("cursor = %d, want %d", got, want)
	}
}

func TestStatusLineShowsModeAndPosition(t *testing.T) {
	app, screen, _ := newTestApp(t, testDoc)
	typeText(app, "x")
	app.draw()
	status := screenRow(screen, app.layout.bodyH)
	for _, want := range []string{"doc.md [+]", "synced", "Ln 1, Col 2"} {
		if !strings.Contains(status, want) {
			t.Fatalf("status %q missing %q", status, want)
		}
	}
}

func TestCloseSavesConfig(t *testing.T) {
	app, _, path := newTestApp(t, testDoc)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	app.cfgPath = cfgPath
	app.handleEvent(key(tcell.KeyCtrlT))
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(path)
	if cfg.WindowMode != "editor" || cfg.LastFile != abs {
		t.Fatalf("unexpected saved config %+v", cfg)
	}
}

func TestOverlayFilterNarrowsChoices(t *testing.T) {
	app, _, _ := newTestApp(t, testDoc)
	app.handleEvent(key(tcell.KeyCtrlK))
	typeText(app, "tw")
	if len(app.overlay.shown) != 1 {
		t.Fatalf("filter should leave one heading, got %+v", app.overlay.shown)
	}
	app.draw()
	app.handleEvent(key(tcell.KeyEnter))
	if got, want := app.Engine().View().Cursor, strings.Index(testDoc, "## Two"); got != want {
		t.Fatalf("cursor = %d, want %d", got, want)
	}

	app.handleEvent(key(tcell.KeyCtrlG))
	typeText(app, "zzz")
	if len(app.overlay.shown) != 0 {
		t.Fatalf("nonsense filter should match nothing")
	}
	app.draw()
	app.handleEvent(key(tcell.KeyBackspace2))
	app.handleEvent(key(tcell.KeyBackspace2))
	app.handleEvent(key(tcell.KeyBackspace2))
	if len(app.overlay.shown) != len(app.overlay.items) {
		t.Fatalf("clearing the filter should restore every snippet")
	}
	app.handleEvent(key(tcell.KeyEscape))
	if app.overlay != nil {
		t.Fatalf("escape should close the overlay")
	}
}
