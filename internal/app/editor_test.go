package app

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/markln/internal/render"
	"github.com/kk-code-lab/markln/internal/syncview"
)

func TestEditorViewLines(t *testing.T) {
	text := "one\n\nthree"
	var v editorView
	v.reindex(text)
	if v.lineCount() != 3 {
		t.Fatalf("lineCount = %d", v.lineCount())
	}
	tests := []struct {
		offset int
		line   int
	}{
		{0, 0}, {3, 0}, {4, 1}, {5, 2}, {10, 2},
	}
	for _, tt := range tests {
		if got := v.lineOf(tt.offset); got != tt.line {
			t.Fatalf("lineOf(%d) = %d, want %d", tt.offset, got, tt.line)
		}
	}
	if start, end := v.lineBounds(text, 2); start != 5 || end != 10 {
		t.Fatalf("lineBounds(2) = %d,%d", start, end)
	}
}

func TestColumnsAndBoundaries(t *testing.T) {
	tests := []struct {
		prefix string
		col    int
	}{
		{"", 0},
		{"abc", 3},
		{"\t", 4},
		{"a\tb", 5},
		{"日本", 4},
		{"e\u0301", 1},
	}
	for _, tt := range tests {
		if got := columnOf(tt.prefix); got != tt.col {
			t.Fatalf("columnOf(%q) = %d, want %d", tt.prefix, got, tt.col)
		}
	}

	text := "a日e\u0301\nx"
	if got := offsetAtColumn(text, 0, 7, 2); got != 1 {
		t.Fatalf("column inside a wide rune should stop before it, got %d", got)
	}
	if got := nextBoundary(text, 4); got != 7 {
		t.Fatalf("nextBoundary should skip the combining mark, got %d", got)
	}
	if got := prevBoundary(text, 7); got != 4 {
		t.Fatalf("prevBoundary should land before the cluster, got %d", got)
	}
	if got := prevBoundary(text, 8); got != 7 {
		t.Fatalf("prevBoundary across newline = %d", got)
	}
}

func TestScrollToShow(t *testing.T) {
	text := "0\n1\n2\n3\n4\n5\n6\n7\n8\n9"
	var v editorView
	v.reindex(text)
	v.scrollToShow(text, 16, 3, 10)
	if v.topLine != 6 {
		t.Fatalf("topLine = %d, want 6", v.topLine)
	}
	v.scrollToShow(text, 0, 3, 10)
	if v.topLine != 0 {
		t.Fatalf("topLine = %d, want 0", v.topLine)
	}
}

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		mode     syncview.Mode
		editorW  int
		previewW int
		render   int
	}{
		{"split", 80, 24, syncview.Synced, 40, 39, 39},
		{"editor", 80, 24, syncview.EditorOnly, 80, 0, 39},
		{"preview", 80, 24, syncview.PreviewOnly, 0, 80, 80},
		{"narrow", 15, 24, syncview.Synced, 15, 0, 15},
	}
	for _, tt := range tests {
		l := computeLayout(tt.w, tt.h, tt.mode)
		if l.editorW != tt.editorW || l.previewW != tt.previewW || l.renderWidth != tt.render {
			t.Fatalf("%s: got %+v", tt.name, l)
		}
		if l.bodyH != tt.h-statusHeight {
			t.Fatalf("%s: bodyH = %d", tt.name, l.bodyH)
		}
	}
}

func TestThemeRunStyles(t *testing.T) {
	dark := GetColorTheme("dark")
	fg, _, attrs := dark.runStyle(render.StyleHeading | render.StyleBold).Decompose()
	if fg != dark.HeadingFg || attrs&tcell.AttrBold == 0 {
		t.Fatalf("heading style wrong: fg=%v attrs=%v", fg, attrs)
	}
	_, _, attrs = dark.runStyle(render.StyleStrike).Decompose()
	if attrs&tcell.AttrStrikeThrough == 0 {
		t.Fatalf("strike style missing")
	}
	if GetColorTheme("unknown").Name != "dark" {
		t.Fatalf("unknown theme should fall back to dark")
	}
	mono := GetColorTheme("mono")
	fg, _, _ = mono.runStyle(render.StyleLink).Decompose()
	if fg != tcell.ColorDefault {
		t.Fatalf("mono theme should not colour links, got %v", fg)
	}
}
