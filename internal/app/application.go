// Package app is the terminal front end: a split-pane markdown editor with a
// live preview, driven entirely through the engine.
package app

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/markln/internal/config"
	"github.com/kk-code-lab/markln/internal/engine"
	"github.com/kk-code-lab/markln/internal/fs"
	"github.com/kk-code-lab/markln/internal/logging"
	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/syncview"
)

// Options configures a new Application.
type Options struct {
	// Path is the document to edit. It may name a file that does not exist
	// yet; an empty path starts an unnamed buffer.
	Path string
	// ConfigPath is where window mode and last file are remembered on exit.
	// Empty disables saving.
	ConfigPath string
	Config     config.Config
	Logger     *log.Logger
}

// Application represents the running editor.
type Application struct {
	screen  tcell.Screen
	eng     *engine.Engine
	file    fs.File
	cfg     config.Config
	cfgPath string
	theme   ColorTheme
	log     *log.Logger

	editor  editorView
	layout  layout
	overlay *overlay

	status      string
	statusError bool
	quitArmed   bool
	shouldQuit  bool
}

// New loads opts.Path and prepares the panes for screen, which must already
// be initialised.
func New(screen tcell.Screen, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	cfg := opts.Config

	var (
		text string
		file fs.File
	)
	if opts.Path != "" {
		var err error
		text, file, err = fs.Load(opts.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened document", logging.FieldPath, opts.Path, logging.FieldBytes, len(text))
	}

	w, h := screen.Size()
	l := computeLayout(w, h, cfg.Mode())
	eng := engine.New(text,
		engine.WithParseOptions(cfg.ParseOptions()),
		engine.WithRenderOptions(cfg.RenderOptions(l.renderWidth)),
		engine.WithMode(cfg.Mode()),
		engine.WithAutoPreview(cfg.AutoPreview),
		engine.WithLogger(logger),
	)
	eng.SetViewport(l.bodyH)

	app := &Application{
		screen:  screen,
		eng:     eng,
		file:    file,
		cfg:     cfg,
		cfgPath: opts.ConfigPath,
		theme:   GetColorTheme(cfg.Theme),
		log:     logger,
		layout:  l,
	}
	app.editor.reindex(text)
	app.editor.wantCol = -1
	if !file.Exists && opts.Path != "" {
		app.setStatus("new file")
	}
	return app, nil
}

// Close remembers the window mode and file for the next start and releases
// the screen.
func (app *Application) Close() error {
	defer app.screen.Fini()
	if app.cfgPath == "" {
		return nil
	}
	app.cfg.WindowMode = app.eng.Mode().String()
	if app.file.Path != "" && app.file.Exists {
		if abs, err := filepath.Abs(app.file.Path); err == nil {
			app.cfg.LastFile = abs
		}
	}
	if err := config.Save(app.cfg, app.cfgPath); err != nil {
		app.log.Warn("could not save config", logging.FieldError, err, logging.FieldPath, app.cfgPath)
		return err
	}
	return nil
}

// Engine exposes the document engine, mainly for tests.
func (app *Application) Engine() *engine.Engine { return app.eng }

func (app *Application) setStatus(format string, args ...any) {
	app.status = fmt.Sprintf(format, args...)
	app.statusError = false
}

func (app *Application) setError(err error) {
	app.status = err.Error()
	app.statusError = true
	app.log.Warn("command failed", logging.FieldError, err)
}

// relayout recomputes pane geometry after a resize or mode change.
func (app *Application) relayout() {
	w, h := app.screen.Size()
	l := computeLayout(w, h, app.eng.Mode())
	if l.renderWidth != app.layout.renderWidth || app.eng.DisplayWidth() != l.renderWidth {
		app.eng.SetDisplayWidth(l.renderWidth)
	}
	app.layout = l
	app.eng.SetViewport(l.bodyH)
	app.followEditorTop()
	app.showCursor()
}

// edit applies one change and moves the editor view to follow the engine.
func (app *Application) edit(r markdown.Range, text string) bool {
	summary, err := app.eng.ApplyEdit(r, text)
	if err != nil {
		app.setError(err)
		return true
	}
	if summary.Full && summary.Reason != "" {
		app.log.Debug("preview rebuilt", logging.FieldReason, summary.Reason)
	}
	app.afterTextChange()
	return true
}

// moveCursor places the cursor at offset, scrolling the editor to keep it
// visible. The scroll is reported first so that in synced mode the preview
// ends up on the cursor rather than on the top line.
func (app *Application) moveCursor(offset int) {
	text := app.eng.Text()
	offset = min(max(offset, 0), len(text))
	top, left := app.editor.topLine, app.editor.leftCol
	app.editor.scrollToShow(text, offset, app.layout.bodyH, app.editorTextWidth())
	if app.editor.topLine != top || app.editor.leftCol != left {
		if _, err := app.eng.ScrollEditor(app.editor.lineStart(app.editor.topLine)); err != nil {
			app.setError(err)
		}
	}
	if _, err := app.eng.MoveCursor(offset); err != nil {
		app.setError(err)
	}
}

// showCursor keeps the cursor on screen after the engine moved it. A
// changed top line is reported before the cursor is re-announced, so the
// synced preview stays on the cursor.
func (app *Application) showCursor() {
	cursor := app.eng.View().Cursor
	top := app.editor.topLine
	app.editor.scrollToShow(app.eng.Text(), cursor, app.layout.bodyH, app.editorTextWidth())
	if app.editor.topLine == top {
		return
	}
	if _, err := app.eng.ScrollEditor(app.editor.lineStart(app.editor.topLine)); err != nil {
		app.setError(err)
		return
	}
	if _, err := app.eng.MoveCursor(cursor); err != nil {
		app.setError(err)
	}
}

// afterTextChange refreshes the editor geometry for the engine's new text.
func (app *Application) afterTextChange() {
	app.editor.reindex(app.eng.Text())
	app.editor.wantCol = -1
	app.quitArmed = false
	app.followEditorTop()
	app.showCursor()
}

// followEditorTop moves the editor to the engine's top offset, used after
// the preview drove the scroll position.
func (app *Application) followEditorTop() {
	app.editor.topLine = app.editor.lineOf(app.eng.View().EditorTop)
}

func (app *Application) scrollEditor(lines int) {
	top := min(max(app.editor.topLine+lines, 0), max(app.editor.lineCount()-1, 0))
	if top == app.editor.topLine {
		return
	}
	app.editor.topLine = top
	if _, err := app.eng.ScrollEditor(app.editor.lineStart(top)); err != nil {
		app.setError(err)
	}
}

func (app *Application) scrollPreview(lines int) {
	ix := app.eng.Index()
	if ix.Len() == 0 {
		return
	}
	target := min(max(app.eng.View().PreviewTop+lines, 0), ix.Len()-1)
	if _, err := app.eng.ScrollPreview(target); err != nil {
		app.setError(err)
		return
	}
	if app.eng.Mode() == syncview.Synced {
		app.followEditorTop()
	}
}

func (app *Application) save() bool {
	if app.file.Path == "" {
		app.openPrompt("Save as", "")
		return true
	}
	f, err := fs.Save(app.eng.Text(), app.file)
	if err != nil {
		app.setError(err)
		return true
	}
	app.file = f
	app.eng.MarkSaved()
	app.quitArmed = false
	app.log.Info("saved document", logging.FieldPath, f.Path, logging.FieldBytes, len(app.eng.Text()))
	app.setStatus("saved %s", filepath.Base(f.Path))
	return true
}

func (app *Application) saveAs(path string) bool {
	if path == "" {
		app.setStatus("save cancelled")
		return true
	}
	app.file = fs.File{Path: path, Encoding: app.file.Encoding, CRLF: app.file.CRLF, Mode: app.file.Mode}
	return app.save()
}

func (app *Application) requestQuit() bool {
	if app.eng.Modified() && !app.quitArmed {
		app.quitArmed = true
		app.setStatus("unsaved changes: press Ctrl+Q again to quit, Ctrl+S to save")
		return true
	}
	app.shouldQuit = true
	return false
}

func (app *Application) editorTextWidth() int {
	return max(app.layout.editorW-gutterWidth(app.editor.lineCount()), 1)
}
