package render

import (
	"strings"

	"github.com/kk-code-lab/markln/internal/markdown"
)

const ellipsis = "…"

type tableBorders struct {
	topLeft, topSep, topRight          string
	midLeft, midSep, midRight          string
	bottomLeft, bottomSep, bottomRight string
}

func defaultTableBorders() tableBorders {
	return tableBorders{
		topLeft:     "┌",
		topSep:      "┬",
		topRight:    "┐",
		midLeft:     "├",
		midSep:      "┼",
		midRight:    "┤",
		bottomLeft:  "└",
		bottomSep:   "┴",
		bottomRight: "┘",
	}
}

type tableCell struct {
	lines []cellLine
}

type cellLine struct {
	runs  []Run
	width int
}

type tableLayout struct {
	widths []int
	header []tableCell
	rows   [][]tableCell
}

// renderTable lays the table out at width columns. Every physical row of the
// source becomes one or more display rows; borders are decoration.
func (r *Renderer) renderTable(t *markdown.Table, width int) []draft {
	if len(t.Header.Cells) == 0 {
		return nil
	}
	layout := r.tableLayout(t, width)
	borders := defaultTableBorders()
	node := t.NodeID()

	hCells := make([]string, len(layout.widths))
	for i, w := range layout.widths {
		hCells[i] = strings.Repeat("─", w+2)
	}
	border := func(left, sep, right string) draft {
		return draft{
			runs:  []Run{{Text: left + strings.Join(hCells, sep) + right, Style: StyleTableBorder}},
			node:  node,
			kind:  markdown.BlockTable,
			decor: true,
		}
	}
	emitRow := func(out []draft, cells []tableCell, src markdown.Range) []draft {
		height := cellBlockHeight(cells)
		for i := 0; i < height; i++ {
			end := src.Start + src.Len()*(i+1)/height
			out = append(out, draft{
				runs: renderTableRow(cells, i, layout.widths, t.Align),
				src:  markdown.Range{Start: src.Start, End: end},
				node: node,
				kind: markdown.BlockTable,
			})
		}
		return out
	}

	out := []draft{border(borders.topLeft, borders.topSep, borders.topRight)}
	out = emitRow(out, layout.header, t.Header.Range)
	out = append(out, border(borders.midLeft, borders.midSep, borders.midRight))
	for i, row := range layout.rows {
		out = emitRow(out, row, t.Rows[i].Range)
	}
	out = append(out, border(borders.bottomLeft, borders.bottomSep, borders.bottomRight))
	return out
}

func (r *Renderer) tableLayout(t *markdown.Table, width int) tableLayout {
	header := make([]tableCell, len(t.Header.Cells))
	for i, c := range t.Header.Cells {
		header[i] = makeTableCell(c, StyleBold)
	}
	rows := make([][]tableCell, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]tableCell, len(header))
		for j := range header {
			if j < len(row.Cells) {
				rows[i][j] = makeTableCell(row.Cells[j], 0)
			} else {
				rows[i][j] = tableCell{lines: []cellLine{{}}}
			}
		}
	}

	widths := computeColumnWidths(header, rows)
	widths = clampColumnWidths(widths, width)

	fit := func(cell tableCell, w int) tableCell {
		if r.opts.TablePolicy == TableTruncate {
			return truncateCell(cell, w)
		}
		return wrapCell(cell, w)
	}
	for i := range header {
		header[i] = fit(header[i], widths[i])
	}
	for _, row := range rows {
		for j := range row {
			row[j] = fit(row[j], widths[j])
		}
	}
	return tableLayout{widths: widths, header: header, rows: rows}
}

func makeTableCell(c markdown.TableCell, base Style) tableCell {
	runs := inlineRuns(c.Inlines, base)
	return tableCell{lines: []cellLine{{runs: runs, width: runsWidth(runs)}}}
}

func computeColumnWidths(headers []tableCell, rows [][]tableCell) []int {
	widths := make([]int, len(headers))
	update := func(cell tableCell, idx int) {
		for _, line := range cell.lines {
			if line.width > widths[idx] {
				widths[idx] = line.width
			}
		}
	}
	for i, cell := range headers {
		update(cell, i)
	}
	for _, row := range rows {
		for i := range widths {
			if i < len(row) {
				update(row[i], i)
			}
		}
	}
	return widths
}

// clampColumnWidths narrows the widest columns one column at a time until
// the table fits, never going below three columns per cell.
func clampColumnWidths(widths []int, maxWidth int) []int {
	if maxWidth <= 0 || len(widths) == 0 {
		return widths
	}
	const minColWidth = 3
	total := tableWidth(widths)
	for total > maxWidth {
		idx := widestColumn(widths, minColWidth)
		if idx == -1 {
			break
		}
		widths[idx]--
		total--
	}
	return widths
}

func widestColumn(widths []int, minWidth int) int {
	maxIdx := -1
	maxVal := minWidth
	for i, w := range widths {
		if w > maxVal {
			maxVal = w
			maxIdx = i
		}
	}
	return maxIdx
}

func tableWidth(widths []int) int {
	if len(widths) == 0 {
		return 0
	}
	total := 0
	for _, w := range widths {
		total += w
	}
	// Each column gets 2 spaces + 1 border, plus one extra border at the end.
	return total + len(widths)*3 + 1
}

func wrapCell(cell tableCell, width int) tableCell {
	var wrapped []cellLine
	for _, line := range cell.lines {
		for _, row := range wrapRuns(line.runs, width) {
			wrapped = append(wrapped, cellLine{runs: row.runs, width: runsWidth(row.runs)})
		}
	}
	if len(wrapped) == 0 {
		wrapped = []cellLine{{}}
	}
	return tableCell{lines: wrapped}
}

func truncateCell(cell tableCell, width int) tableCell {
	if len(cell.lines) == 0 {
		return tableCell{lines: []cellLine{{}}}
	}
	runs := truncateRuns(cell.lines[0].runs, width)
	return tableCell{lines: []cellLine{{runs: runs, width: runsWidth(runs)}}}
}

func renderTableRow(cells []tableCell, lineIdx int, widths []int, align []markdown.Alignment) []Run {
	var runs []Run
	border := func(text string) {
		runs = append(runs, Run{Text: text, Style: StyleTableBorder})
	}
	border("│ ")
	for i, cell := range cells {
		var line cellLine
		if lineIdx < len(cell.lines) {
			line = cell.lines[lineIdx]
		}
		runs = append(runs, alignCell(line, widths[i], alignAt(i, align))...)
		if i == len(cells)-1 {
			border(" │")
		} else {
			border(" │ ")
		}
	}
	return runs
}

func alignCell(line cellLine, width int, alignment markdown.Alignment) []Run {
	space := max(width-line.width, 0)
	left, right := 0, space
	switch alignment {
	case markdown.AlignCenter:
		left = space / 2
		right = space - left
	case markdown.AlignRight:
		left = space
		right = 0
	}

	runs := make([]Run, 0, 2+len(line.runs))
	if left > 0 {
		runs = append(runs, Run{Text: strings.Repeat(" ", left)})
	}
	runs = append(runs, line.runs...)
	if right > 0 {
		runs = append(runs, Run{Text: strings.Repeat(" ", right)})
	}
	return runs
}

func alignAt(idx int, align []markdown.Alignment) markdown.Alignment {
	if idx < len(align) {
		return align[idx]
	}
	return markdown.AlignDefault
}

func cellBlockHeight(cells []tableCell) int {
	height := 1
	for _, cell := range cells {
		height = max(height, len(cell.lines))
	}
	return height
}
