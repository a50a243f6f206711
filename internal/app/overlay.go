package app

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/search"
	"github.com/kk-code-lab/markln/internal/textutil"
)

type overlayKind int

const (
	overlayTOC overlayKind = iota
	overlaySnippets
	overlayHelp
	overlayPrompt
)

// overlay is a modal list or prompt drawn over the panes. Lists other than
// help can be narrowed by typing; shown holds the matching items, best first,
// and selected indexes into it.
type overlay struct {
	kind     overlayKind
	title    string
	items    []string
	ids      []markdown.NodeID
	shown    []search.Result
	selected int
	scroll   int
	input    string
}

var labelMatcher = search.NewFuzzyMatcher()

var helpItems = []string{
	"Ctrl+S        save",
	"Ctrl+Q        quit",
	"Ctrl+T        cycle synced / editor / preview",
	"Ctrl+J        scroll preview to cursor",
	"Ctrl+K        table of contents",
	"Ctrl+G        insert markdown snippet",
	"typing        filter contents / snippets",
	"Ctrl+R        refresh preview",
	"Ctrl+P        toggle auto preview",
	"Ctrl+Home/End start / end of document",
	"Alt+Up/Down   scroll preview",
	"Ctrl+Z        suspend",
	"Ctrl+L        this help",
}

func (app *Application) openTOC() {
	toc := app.eng.TOC()
	if len(toc) == 0 {
		app.setStatus("no headings")
		return
	}
	o := &overlay{kind: overlayTOC, title: "Contents"}
	cursor := app.eng.View().Cursor
	for i, entry := range toc {
		o.items = append(o.items, strings.Repeat("  ", entry.Level-1)+textutil.Sanitize(entry.Text))
		o.ids = append(o.ids, entry.ID)
		if entry.Range.Start <= cursor {
			o.selected = i
		}
	}
	o.shown = labelMatcher.Rank("", o.items)
	app.overlay = o
}

func (app *Application) openSnippets() {
	o := &overlay{kind: overlaySnippets, title: "Insert"}
	for _, s := range markdown.Snippets {
		o.items = append(o.items, s.Name)
	}
	o.shown = labelMatcher.Rank("", o.items)
	app.overlay = o
}

func (app *Application) openHelp() {
	o := &overlay{kind: overlayHelp, title: "Keys", items: helpItems}
	o.shown = labelMatcher.Rank("", o.items)
	app.overlay = o
}

func (app *Application) openPrompt(title, initial string) {
	app.overlay = &overlay{kind: overlayPrompt, title: title, input: initial}
}

// handleOverlayKey processes a key while an overlay is open.
func (app *Application) handleOverlayKey(ev *tcell.EventKey) bool {
	o := app.overlay
	if o.kind == overlayPrompt {
		return app.handlePromptKey(ev)
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlL:
		app.overlay = nil
	case tcell.KeyUp:
		o.move(-1)
	case tcell.KeyDown:
		o.move(1)
	case tcell.KeyPgUp:
		o.move(-10)
	case tcell.KeyPgDn:
		o.move(10)
	case tcell.KeyEnter:
		app.overlay = nil
		app.chooseOverlayItem(o)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if o.input != "" {
			o.setFilter(o.input[:prevBoundary(o.input, len(o.input))])
		}
	case tcell.KeyRune:
		if o.kind == overlayHelp {
			if ev.Rune() == 'q' {
				app.overlay = nil
			}
			return true
		}
		o.setFilter(o.input + string(ev.Rune()))
	}
	return true
}

func (app *Application) handlePromptKey(ev *tcell.EventKey) bool {
	o := app.overlay
	switch ev.Key() {
	case tcell.KeyEscape:
		app.overlay = nil
		app.setStatus("save cancelled")
	case tcell.KeyEnter:
		app.overlay = nil
		app.saveAs(strings.TrimSpace(o.input))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if o.input != "" {
			o.input = o.input[:prevBoundary(o.input, len(o.input))]
		}
	case tcell.KeyRune:
		o.input += string(ev.Rune())
	}
	return true
}

func (app *Application) chooseOverlayItem(o *overlay) {
	if o.selected < 0 || o.selected >= len(o.shown) {
		return
	}
	idx := o.shown[o.selected].Index
	switch o.kind {
	case overlayTOC:
		offset, err := app.eng.JumpToTOCEntry(o.ids[idx])
		if err != nil {
			app.setError(err)
			return
		}
		app.moveCursor(offset)
	case overlaySnippets:
		if _, err := app.eng.InsertSnippet(markdown.Snippets[idx].Name); err != nil {
			app.setError(err)
			return
		}
		app.afterTextChange()
	}
}

// setFilter narrows the list to items matching filter and selects the best.
func (o *overlay) setFilter(filter string) {
	o.input = filter
	o.shown = labelMatcher.Rank(filter, o.items)
	o.selected = 0
	o.scroll = 0
}

func (o *overlay) move(delta int) {
	if len(o.shown) == 0 {
		return
	}
	o.selected = min(max(o.selected+delta, 0), len(o.shown)-1)
}

// visible adjusts scroll so the selection is inside rows and returns the
// first item to draw.
func (o *overlay) visible(rows int) int {
	if o.selected < o.scroll {
		o.scroll = o.selected
	} else if rows > 0 && o.selected >= o.scroll+rows {
		o.scroll = o.selected - rows + 1
	}
	return o.scroll
}
