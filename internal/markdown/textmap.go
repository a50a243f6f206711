package markdown

import "sort"

// piece records that text[at:] continues at absolute offset abs until the
// next piece starts.
type piece struct {
	at  int
	abs int
}

// textMap is a block's literal text together with the source offsets it was
// cut from. Blockquote content is stitched from de-prefixed lines, so the
// mapping is piecewise rather than a single base offset.
type textMap struct {
	text   string
	pieces []piece
}

func contiguous(text string, abs int) textMap {
	return textMap{text: text, pieces: []piece{{at: 0, abs: abs}}}
}

func (m *textMap) appendLine(sep string, text string, abs int) {
	if len(m.pieces) > 0 || m.text != "" {
		m.text += sep
	}
	m.pieces = append(m.pieces, piece{at: len(m.text), abs: abs})
	m.text += text
}

// abs maps a byte index in m.text to a document offset.
func (m textMap) abs(i int) int {
	if len(m.pieces) == 0 {
		return i
	}
	idx := sort.Search(len(m.pieces), func(k int) bool { return m.pieces[k].at > i }) - 1
	if idx < 0 {
		idx = 0
	}
	p := m.pieces[idx]
	return p.abs + (i - p.at)
}

// span maps the local half-open range [lo, hi) to document coordinates.
func (m textMap) span(lo, hi int) Range {
	if hi <= lo {
		start := m.abs(lo)
		return Range{Start: start, End: start}
	}
	return Range{Start: m.abs(lo), End: m.abs(hi-1) + 1}
}

func (m textMap) full() Range {
	return m.span(0, len(m.text))
}
