package render

import (
	"strings"
	"unicode/utf8"

	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/textutil"
)

// cell is one grapheme cluster of styled text.
type cell struct {
	text  string
	width int
	style Style
	space bool
}

// wrappedRow is one output row of wrapRuns. Runes counts the characters the
// row consumed, including a whitespace break that was dropped after it.
type wrappedRow struct {
	runs  []Run
	runes int
}

func splitCells(runs []Run) []cell {
	var cells []cell
	for _, run := range runs {
		for _, c := range textutil.Clusters(run.Text) {
			cells = append(cells, cell{
				text:  c.Text,
				width: c.Width,
				style: run.Style,
				space: c.Text == " ",
			})
		}
	}
	return cells
}

func joinCells(cells []cell) []Run {
	var runs []Run
	var buf strings.Builder
	style := Style(0)
	flush := func() {
		if buf.Len() > 0 {
			runs = append(runs, Run{Text: buf.String(), Style: style})
			buf.Reset()
		}
	}
	for _, c := range cells {
		if c.style != style {
			flush()
			style = c.style
		}
		buf.WriteString(c.text)
	}
	flush()
	return runs
}

func cellRunes(cells []cell) int {
	n := 0
	for _, c := range cells {
		n += utf8.RuneCountInString(c.text)
	}
	return n
}

// wrapRuns breaks styled text into rows no wider than width, breaking at the
// last space that fits. A word longer than the row is split between clusters.
// Clusters wider than width get a row of their own.
func wrapRuns(runs []Run, width int) []wrappedRow {
	cells := splitCells(runs)
	if len(cells) == 0 {
		return []wrappedRow{{}}
	}
	if width < 1 {
		width = 1
	}
	var rows []wrappedRow
	start, used, lastSpace := 0, 0, -1
	for i := 0; i < len(cells); i++ {
		c := cells[i]
		if used+c.width <= width || i == start {
			if c.space {
				lastSpace = i
			}
			used += c.width
			continue
		}
		if c.space {
			rows = append(rows, wrappedRow{runs: joinCells(cells[start:i]), runes: cellRunes(cells[start : i+1])})
			start, used, lastSpace = i+1, 0, -1
			continue
		}
		if lastSpace > start {
			rows = append(rows, wrappedRow{runs: joinCells(cells[start:lastSpace]), runes: cellRunes(cells[start : lastSpace+1])})
			start = lastSpace + 1
		} else {
			rows = append(rows, wrappedRow{runs: joinCells(cells[start:i]), runes: cellRunes(cells[start:i])})
			start = i
		}
		lastSpace = -1
		used = 0
		for k := start; k <= i; k++ {
			used += cells[k].width
			if cells[k].space {
				lastSpace = k
			}
		}
	}
	if start < len(cells) || len(rows) == 0 {
		rows = append(rows, wrappedRow{runs: joinCells(cells[start:]), runes: cellRunes(cells[start:])})
	}
	return rows
}

// hardWrap splits runs every width columns without looking for spaces.
func hardWrap(runs []Run, width int) []wrappedRow {
	cells := splitCells(runs)
	if len(cells) == 0 {
		return []wrappedRow{{}}
	}
	if width < 1 {
		width = 1
	}
	var rows []wrappedRow
	start, used := 0, 0
	for i, c := range cells {
		if used+c.width > width && i > start {
			rows = append(rows, wrappedRow{runs: joinCells(cells[start:i]), runes: cellRunes(cells[start:i])})
			start, used = i, 0
		}
		used += c.width
	}
	rows = append(rows, wrappedRow{runs: joinCells(cells[start:]), runes: cellRunes(cells[start:])})
	return rows
}

// truncateRuns cuts runs to width columns, ending with an ellipsis.
func truncateRuns(runs []Run, width int) []Run {
	total := 0
	for _, r := range runs {
		total += textutil.DisplayWidth(r.Text)
	}
	if total <= width {
		return runs
	}
	if width < 1 {
		return nil
	}
	target := width - 1
	var kept []cell
	used := 0
	for _, c := range splitCells(runs) {
		if used+c.width > target {
			break
		}
		kept = append(kept, c)
		used += c.width
	}
	style := Style(0)
	if len(kept) > 0 {
		style = kept[len(kept)-1].style
	}
	kept = append(kept, cell{text: ellipsis, width: 1, style: style})
	return joinCells(kept)
}

// partition splits src across rows in proportion to the characters each row
// consumed. The returned ends are non-decreasing and the last is src.End.
func partition(src markdown.Range, rows []wrappedRow) []int {
	ends := make([]int, len(rows))
	total := 0
	for _, r := range rows {
		total += r.runes
	}
	cum := 0
	for i, r := range rows {
		cum += r.runes
		if total == 0 || i == len(rows)-1 {
			ends[i] = src.End
			continue
		}
		ends[i] = src.Start + src.Len()*cum/total
	}
	return ends
}
