package app

import "github.com/kk-code-lab/markln/internal/syncview"

const (
	statusHeight   = 1
	separatorWidth = 1
	minPaneWidth   = 10
)

// layout holds the pane geometry for one screen size and mode. A hidden
// pane has zero width.
type layout struct {
	editorX, editorW   int
	previewX, previewW int
	// sepX is the separator column, -1 when only one pane is shown.
	sepX  int
	bodyH int
	// renderWidth is the width the preview is rendered at. It stays at the
	// split width while the preview is hidden so showing it again needs no
	// re-render.
	renderWidth int
}

func computeLayout(w, h int, mode syncview.Mode) layout {
	l := layout{sepX: -1, bodyH: max(h-statusHeight, 0)}
	splitEditor := w / 2
	splitPreview := max(w-splitEditor-separatorWidth, 0)
	if w < 2*minPaneWidth+separatorWidth {
		splitEditor, splitPreview = w, w
	}

	switch mode {
	case syncview.EditorOnly:
		l.editorW = w
		l.renderWidth = splitPreview
	case syncview.PreviewOnly:
		l.previewW = w
		l.renderWidth = w
	default:
		if w < 2*minPaneWidth+separatorWidth {
			// Too narrow to split: show the editor only.
			l.editorW = w
			l.renderWidth = w
			break
		}
		l.editorW = splitEditor
		l.sepX = splitEditor
		l.previewX = splitEditor + separatorWidth
		l.previewW = splitPreview
		l.renderWidth = splitPreview
	}
	return l
}

func (l layout) inEditor(x, y int) bool {
	return l.editorW > 0 && y < l.bodyH && x >= l.editorX && x < l.editorX+l.editorW
}

func (l layout) inPreview(x, y int) bool {
	return l.previewW > 0 && y < l.bodyH && x >= l.previewX && x < l.previewX+l.previewW
}
