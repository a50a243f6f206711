package app

import (
	"sort"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/kk-code-lab/markln/internal/textutil"
)

// editorView is the editor pane's geometry over the engine's text: where
// lines start, which line is at the top and how far the pane is scrolled
// sideways. The text itself lives in the engine.
type editorView struct {
	lineStarts []int
	topLine    int
	leftCol    int
	// wantCol is the display column vertical movement tries to keep.
	wantCol int
}

func (v *editorView) reindex(text string) {
	v.lineStarts = v.lineStarts[:0]
	v.lineStarts = append(v.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			v.lineStarts = append(v.lineStarts, i+1)
		}
	}
	v.topLine = min(v.topLine, len(v.lineStarts)-1)
}

func (v *editorView) lineCount() int { return len(v.lineStarts) }

// lineOf returns the line containing offset.
func (v *editorView) lineOf(offset int) int {
	i := sort.Search(len(v.lineStarts), func(i int) bool { return v.lineStarts[i] > offset })
	return max(i-1, 0)
}

// lineBounds returns the start of line and the offset of its newline (or the
// end of text).
func (v *editorView) lineBounds(text string, line int) (int, int) {
	line = min(max(line, 0), len(v.lineStarts)-1)
	start := v.lineStarts[line]
	if line+1 < len(v.lineStarts) {
		return start, v.lineStarts[line+1] - 1
	}
	return start, len(text)
}

func (v *editorView) lineStart(line int) int {
	return v.lineStarts[min(max(line, 0), len(v.lineStarts)-1)]
}

// scrollToShow adjusts topLine and leftCol so that offset is inside a pane
// of height rows and width columns.
func (v *editorView) scrollToShow(text string, offset, height, width int) {
	line := v.lineOf(offset)
	if line < v.topLine {
		v.topLine = line
	} else if height > 0 && line >= v.topLine+height {
		v.topLine = line - height + 1
	}
	start, _ := v.lineBounds(text, line)
	col := columnOf(text[start:offset])
	if col < v.leftCol {
		v.leftCol = col
	} else if width > 0 && col >= v.leftCol+width {
		v.leftCol = col - width + 1
	}
}

// columnOf is the display column reached after prefix, with tabs expanded.
func columnOf(prefix string) int {
	col := 0
	state := -1
	for len(prefix) > 0 {
		var cluster string
		cluster, prefix, _, state = uniseg.FirstGraphemeClusterInString(prefix, state)
		col = advance(col, cluster)
	}
	return col
}

// offsetAtColumn returns the offset within line [start,end) closest to col
// without passing it.
func offsetAtColumn(text string, start, end, col int) int {
	used := 0
	off := start
	state := -1
	rest := text[start:end]
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		next := advance(used, cluster)
		if next > col {
			break
		}
		used = next
		off += len(cluster)
	}
	return off
}

func advance(col int, cluster string) int {
	if cluster == "\t" {
		return col + textutil.DefaultTabWidth - col%textutil.DefaultTabWidth
	}
	return col + max(uniseg.StringWidth(cluster), 1)
}

// prevBoundary is the grapheme boundary before offset.
func prevBoundary(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	lineStart := strings.LastIndexByte(text[:offset-1], '\n') + 1
	if text[offset-1] == '\n' {
		return offset - 1
	}
	prev := lineStart
	state := -1
	rest := text[lineStart:offset]
	pos := lineStart
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		prev = pos
		pos += len(cluster)
	}
	return prev
}

// nextBoundary is the grapheme boundary after offset.
func nextBoundary(text string, offset int) int {
	if offset >= len(text) {
		return len(text)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(text[offset:], -1)
	return offset + len(cluster)
}
