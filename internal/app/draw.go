package app

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/kk-code-lab/markln/internal/search"
	"github.com/kk-code-lab/markln/internal/textutil"
)

const overlayMaxWidth = 60

// draw paints the whole screen from the engine's current state.
func (app *Application) draw() {
	s := app.screen
	s.Clear()
	l := app.layout

	if l.editorW > 0 {
		app.drawEditor(l)
	}
	if l.sepX >= 0 {
		sepStyle := app.theme.base().Foreground(app.theme.GutterFg)
		for y := 0; y < l.bodyH; y++ {
			s.SetContent(l.sepX, y, '│', nil, sepStyle)
		}
	}
	if l.previewW > 0 {
		app.drawPreview(l)
	}
	app.drawStatus(l)

	if app.overlay != nil {
		s.HideCursor()
		app.drawOverlay()
	}
	s.Show()
}

func gutterWidth(lines int) int {
	return len(strconv.Itoa(lines)) + 1
}

func (app *Application) drawEditor(l layout) {
	text := app.eng.Text()
	gutter := gutterWidth(app.editor.lineCount())
	textX := l.editorX + gutter
	textW := max(l.editorW-gutter, 0)
	base := app.theme.base()
	gutterStyle := base.Foreground(app.theme.GutterFg)
	cursor := app.eng.View().Cursor
	cursorShown := false

	for row := 0; row < l.bodyH; row++ {
		line := app.editor.topLine + row
		if line >= app.editor.lineCount() {
			break
		}
		num := strconv.Itoa(line + 1)
		drawText(app.screen, l.editorX+gutter-1-len(num), row, textX, num, gutterStyle)

		start, end := app.editor.lineBounds(text, line)
		col := 0
		state := -1
		rest := text[start:end]
		off := start
		for {
			if off == cursor && app.overlay == nil {
				if x := col - app.editor.leftCol; x >= 0 && x < textW {
					app.screen.ShowCursor(textX+x, row)
					cursorShown = true
				}
			}
			if len(rest) == 0 {
				break
			}
			var cluster string
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			next := advance(col, cluster)
			if col >= app.editor.leftCol && next-app.editor.leftCol <= textW {
				x := textX + col - app.editor.leftCol
				switch {
				case cluster == "\t":
					for i := 0; i < next-col; i++ {
						app.screen.SetContent(x+i, row, ' ', nil, base)
					}
				case textutil.Sanitize(cluster) != cluster:
					app.screen.SetContent(x, row, '?', nil, gutterStyle)
				default:
					drawText(app.screen, x, row, textX+textW, cluster, base)
				}
			}
			col = next
			off += len(cluster)
		}
	}
	if !cursorShown {
		app.screen.HideCursor()
	}
}

func (app *Application) drawPreview(l layout) {
	ix := app.eng.Index()
	top := app.eng.View().PreviewTop
	maxX := l.previewX + l.previewW
	for row := 0; row < l.bodyH; row++ {
		i := top + row
		if i >= ix.Len() {
			break
		}
		line, err := ix.Line(i)
		if err != nil {
			break
		}
		x := l.previewX
		for _, run := range line.Runs {
			x = drawText(app.screen, x, row, maxX, run.Text, app.theme.runStyle(run.Style))
		}
	}
	if app.eng.Mode().ShowsEditor() {
		return
	}
	if app.eng.Document().Len() == 0 {
		drawText(app.screen, l.previewX, 0, maxX, "(empty document)", app.theme.base().Foreground(app.theme.GutterFg))
	}
}

func (app *Application) drawStatus(l layout) {
	w, _ := app.screen.Size()
	y := l.bodyH
	style := app.theme.status()
	for x := 0; x < w; x++ {
		app.screen.SetContent(x, y, ' ', nil, style)
	}

	name := "[no name]"
	if app.file.Path != "" {
		name = filepath.Base(app.file.Path)
	}
	if app.eng.Modified() {
		name += " [+]"
	}
	left := fmt.Sprintf(" %s · %s", name, app.eng.Mode())
	if app.eng.PreviewStale() {
		left += " · preview paused"
	}

	text := app.eng.Text()
	cursor := app.eng.View().Cursor
	line := app.editor.lineOf(cursor)
	start, _ := app.editor.lineBounds(text, line)
	right := fmt.Sprintf("Ln %d, Col %d ", line+1, columnOf(text[start:cursor])+1)

	x := drawText(app.screen, 0, y, w, left, style.Bold(true))
	if app.status != "" {
		msgStyle := style
		if app.statusError {
			msgStyle = msgStyle.Foreground(app.theme.ErrorFg)
		}
		x = drawText(app.screen, x, y, w, "  ", style)
		avail := w - x - textutil.DisplayWidth(right) - 1
		drawText(app.screen, x, y, w, textutil.Truncate(app.status, avail, "…"), msgStyle)
	}
	rightX := w - textutil.DisplayWidth(right)
	if rightX > x {
		drawText(app.screen, rightX, y, w, right, style)
	}
}

func (app *Application) drawOverlay() {
	o := app.overlay
	w, h := app.screen.Size()
	boxW := min(w-4, overlayMaxWidth)
	if boxW < 10 {
		return
	}
	rows := len(o.items)
	if o.kind == overlayPrompt {
		rows = 1
	}
	boxH := min(rows+2, max(h-statusHeight-2, 3))
	x0 := (w - boxW) / 2
	y0 := max((h-statusHeight-boxH)/2, 0)
	style := app.theme.overlay(false)

	for y := y0; y < y0+boxH; y++ {
		for x := x0; x < x0+boxW; x++ {
			app.screen.SetContent(x, y, ' ', nil, style)
		}
	}
	title := o.title
	if o.kind != overlayPrompt && o.input != "" {
		title += ": " + o.input
	}
	drawText(app.screen, x0+1, y0, x0+boxW-1, textutil.Truncate(title, boxW-2, "…"), style.Bold(true))

	if o.kind == overlayPrompt {
		input := o.input
		if textutil.DisplayWidth(input) > boxW-3 {
			input = "…" + lastColumns(input, boxW-4)
		}
		end := drawText(app.screen, x0+1, y0+1, x0+boxW-1, input, style)
		app.screen.ShowCursor(end, y0+1)
		return
	}

	visibleRows := boxH - 2
	if len(o.shown) == 0 {
		drawText(app.screen, x0+2, y0+1, x0+boxW-1, "no match", style.Dim(true))
		return
	}
	first := o.visible(visibleRows)
	for i := 0; i < visibleRows && first+i < len(o.shown); i++ {
		idx := first + i
		itemStyle := app.theme.overlay(idx == o.selected)
		y := y0 + 1 + i
		for x := x0 + 1; x < x0+boxW-1; x++ {
			app.screen.SetContent(x, y, ' ', nil, itemStyle)
		}
		result := o.shown[idx]
		x := x0 + 2
		for n, part := range search.Highlight(o.items[result.Index], result.Spans) {
			partStyle := itemStyle
			if n%2 == 1 {
				partStyle = partStyle.Bold(true).Underline(true)
			}
			x = drawText(app.screen, x, y, x0+boxW-1, part, partStyle)
		}
	}
}

// drawText paints text from x up to maxX and returns the column after it.
// Wide characters that would cross maxX are not drawn.
func drawText(screen tcell.Screen, x, y, maxX int, text string, style tcell.Style) int {
	state := -1
	for len(text) > 0 && x < maxX {
		var cluster string
		var width int
		cluster, text, width, state = uniseg.FirstGraphemeClusterInString(text, state)
		runes := []rune(cluster)
		if width <= 0 {
			width = runewidth.RuneWidth(runes[0])
		}
		if x+width > maxX {
			break
		}
		var comb []rune
		if len(runes) > 1 {
			comb = runes[1:]
		}
		screen.SetContent(x, y, runes[0], comb, style)
		x += max(width, 1)
	}
	return x
}

func lastColumns(text string, width int) string {
	clusters := textutil.Clusters(text)
	used := 0
	i := len(clusters)
	for i > 0 && used+clusters[i-1].Width <= width {
		i--
		used += clusters[i].Width
	}
	var b strings.Builder
	for _, c := range clusters[i:] {
		b.WriteString(c.Text)
	}
	return b.String()
}
