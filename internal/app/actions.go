package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/syncview"
)

// handleKey returns false when the application should stop.
func (app *Application) handleKey(ev *tcell.EventKey) bool {
	if app.overlay != nil {
		return app.handleOverlayKey(ev)
	}
	if ev.Key() != tcell.KeyCtrlQ {
		app.quitArmed = false
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return app.requestQuit()
	case tcell.KeyCtrlS:
		return app.save()
	case tcell.KeyCtrlT:
		mode := app.eng.CycleMode()
		app.relayout()
		app.setStatus("%s mode", mode)
		return true
	case tcell.KeyCtrlJ:
		app.eng.Resync()
		return true
	case tcell.KeyCtrlR:
		app.eng.RefreshPreview()
		app.setStatus("preview refreshed")
		return true
	case tcell.KeyCtrlP:
		on := !app.eng.AutoPreview()
		app.eng.SetAutoPreview(on)
		app.cfg.AutoPreview = on
		if on {
			app.setStatus("auto preview on")
		} else {
			app.setStatus("auto preview off")
		}
		return true
	case tcell.KeyCtrlK:
		app.openTOC()
		return true
	case tcell.KeyCtrlG:
		app.openSnippets()
		return true
	case tcell.KeyCtrlL:
		app.openHelp()
		return true
	case tcell.KeyCtrlZ:
		app.suspendToShell()
		app.resumeAfterStop()
		return true
	}

	if app.eng.Mode() == syncview.PreviewOnly {
		return app.handlePreviewKey(ev)
	}
	if ev.Modifiers()&tcell.ModAlt != 0 {
		switch ev.Key() {
		case tcell.KeyUp:
			app.scrollPreview(-1)
			return true
		case tcell.KeyDown:
			app.scrollPreview(1)
			return true
		}
	}
	return app.handleEditorKey(ev)
}

// handlePreviewKey scrolls the preview when it is the only pane.
func (app *Application) handlePreviewKey(ev *tcell.EventKey) bool {
	page := max(app.layout.bodyH-1, 1)
	switch ev.Key() {
	case tcell.KeyUp:
		app.scrollPreview(-1)
	case tcell.KeyDown:
		app.scrollPreview(1)
	case tcell.KeyPgUp:
		app.scrollPreview(-page)
	case tcell.KeyPgDn:
		app.scrollPreview(page)
	case tcell.KeyHome:
		app.scrollPreview(-app.eng.Index().Len())
	case tcell.KeyEnd:
		app.scrollPreview(app.eng.Index().Len())
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k':
			app.scrollPreview(-1)
		case 'j':
			app.scrollPreview(1)
		}
	}
	return true
}

func (app *Application) handleEditorKey(ev *tcell.EventKey) bool {
	text := app.eng.Text()
	cursor := app.eng.View().Cursor
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0

	switch ev.Key() {
	case tcell.KeyLeft:
		app.editor.wantCol = -1
		app.moveCursor(prevBoundary(text, cursor))
	case tcell.KeyRight:
		app.editor.wantCol = -1
		app.moveCursor(nextBoundary(text, cursor))
	case tcell.KeyUp:
		app.moveVertical(-1)
	case tcell.KeyDown:
		app.moveVertical(1)
	case tcell.KeyPgUp:
		app.moveVertical(-max(app.layout.bodyH-1, 1))
	case tcell.KeyPgDn:
		app.moveVertical(max(app.layout.bodyH-1, 1))
	case tcell.KeyHome:
		app.editor.wantCol = -1
		if ctrl {
			app.moveCursor(0)
		} else {
			start, _ := app.editor.lineBounds(text, app.editor.lineOf(cursor))
			app.moveCursor(start)
		}
	case tcell.KeyEnd:
		app.editor.wantCol = -1
		if ctrl {
			app.moveCursor(len(text))
		} else {
			_, end := app.editor.lineBounds(text, app.editor.lineOf(cursor))
			app.moveCursor(end)
		}
	case tcell.KeyEnter:
		return app.edit(markdown.Range{Start: cursor, End: cursor}, "\n")
	case tcell.KeyTab:
		return app.edit(markdown.Range{Start: cursor, End: cursor}, "\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if cursor == 0 {
			return true
		}
		return app.edit(markdown.Range{Start: prevBoundary(text, cursor), End: cursor}, "")
	case tcell.KeyDelete:
		if cursor == len(text) {
			return true
		}
		return app.edit(markdown.Range{Start: cursor, End: nextBoundary(text, cursor)}, "")
	case tcell.KeyRune:
		return app.edit(markdown.Range{Start: cursor, End: cursor}, string(ev.Rune()))
	default:
		return false
	}
	return true
}

// moveVertical moves the cursor by lines, keeping the display column the
// cursor had before the first vertical move.
func (app *Application) moveVertical(lines int) {
	text := app.eng.Text()
	cursor := app.eng.View().Cursor
	line := app.editor.lineOf(cursor)
	start, _ := app.editor.lineBounds(text, line)
	if app.editor.wantCol < 0 {
		app.editor.wantCol = columnOf(text[start:cursor])
	}
	target := min(max(line+lines, 0), app.editor.lineCount()-1)
	if target == line {
		return
	}
	tStart, tEnd := app.editor.lineBounds(text, target)
	app.moveCursor(offsetAtColumn(text, tStart, tEnd, app.editor.wantCol))
}

// handleMouse maps wheel events to pane scrolling and primary clicks to
// cursor placement.
func (app *Application) handleMouse(ev *tcell.EventMouse) bool {
	if app.overlay != nil {
		return false
	}
	x, y := ev.Position()
	l := app.layout
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		if l.inPreview(x, y) {
			app.scrollPreview(-3)
		} else if l.inEditor(x, y) {
			app.scrollEditor(-3)
		}
		return true
	case buttons&tcell.WheelDown != 0:
		if l.inPreview(x, y) {
			app.scrollPreview(3)
		} else if l.inEditor(x, y) {
			app.scrollEditor(3)
		}
		return true
	case buttons&tcell.Button1 == 0:
		return false
	}

	switch {
	case l.inEditor(x, y):
		text := app.eng.Text()
		line := app.editor.topLine + y
		if line >= app.editor.lineCount() {
			app.moveCursor(len(text))
			return true
		}
		col := x - l.editorX - gutterWidth(app.editor.lineCount()) + app.editor.leftCol
		start, end := app.editor.lineBounds(text, line)
		app.editor.wantCol = -1
		app.moveCursor(offsetAtColumn(text, start, end, max(col, 0)))
	case l.inPreview(x, y):
		line := app.eng.View().PreviewTop + y
		rng, err := app.eng.ResolveSourcePosition(line)
		if err != nil {
			return false
		}
		app.editor.wantCol = -1
		app.moveCursor(rng.Start)
	default:
		return false
	}
	return true
}
