package markdown

import "strings"

// cellSpan is the trimmed byte range of one cell within a row line.
type cellSpan struct {
	lo, hi int
}

func (s *scanner) tableStartsAt(idx int) bool {
	if idx+1 >= len(s.lines) {
		return false
	}
	header := s.lines[idx].text
	separator := s.lines[idx+1].text
	if !looksLikeTableRow(header) || !looksLikeTableSeparator(separator) {
		return false
	}
	return len(splitCells(header)) == len(splitCells(separator))
}

// table consumes the header, separator and body rows. Rows with too many or
// too few cells are clipped or padded by the builder.
func (s *scanner) table() token {
	tok := token{kind: BlockTable}
	tok.lines = append(tok.lines, s.lines[s.pos], s.lines[s.pos+1])
	tok.align = parseTableAlignment(s.lines[s.pos+1].text)
	s.pos += 2
	for s.pos < len(s.lines) {
		line := s.lines[s.pos]
		if isBlankLine(line.text) || !strings.Contains(line.text, "|") {
			break
		}
		body := strings.TrimLeft(line.text, " \t")
		if _, ok := detectFence(body); ok {
			break
		}
		if strings.HasPrefix(body, ">") || isThematicBreak(body) {
			break
		}
		if _, _, _, ok := atxHeading(line.text); ok {
			break
		}
		tok.lines = append(tok.lines, line)
		s.pos++
	}
	return tok
}

func looksLikeTableRow(line string) bool {
	return strings.Contains(line, "|") && !isBlankLine(line)
}

func looksLikeTableSeparator(line string) bool {
	if !strings.Contains(line, "|") {
		return false
	}
	spans := splitCells(line)
	if len(spans) == 0 {
		return false
	}
	for _, sp := range spans {
		part := line[sp.lo:sp.hi]
		if part == "" || !strings.Contains(part, "-") {
			return false
		}
		if strings.IndexFunc(part, func(r rune) bool { return r != '-' && r != ':' }) != -1 {
			return false
		}
	}
	return true
}

func parseTableAlignment(line string) []Alignment {
	spans := splitCells(line)
	align := make([]Alignment, len(spans))
	for i, sp := range spans {
		part := line[sp.lo:sp.hi]
		left := strings.HasPrefix(part, ":")
		right := strings.HasSuffix(part, ":")
		switch {
		case left && right:
			align[i] = AlignCenter
		case right:
			align[i] = AlignRight
		case left:
			align[i] = AlignLeft
		default:
			align[i] = AlignDefault
		}
	}
	return align
}

// splitCells splits a pipe-delimited row. Escaped pipes and pipes inside code
// spans do not split. Leading and trailing pipes are optional.
func splitCells(line string) []cellSpan {
	start := 0
	end := len(line)
	for start < end && (line[start] == ' ' || line[start] == '\t') {
		start++
	}
	for end > start && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	if start < end && line[start] == '|' {
		start++
	}
	if end > start && line[end-1] == '|' && (end-2 < start || line[end-2] != '\\') {
		end--
	}

	var spans []cellSpan
	cellStart := start
	inCode := 0
	for i := start; i < end; i++ {
		switch line[i] {
		case '\\':
			i++
		case '`':
			run := countRepeatByte(line[i:end], '`')
			switch {
			case inCode == 0:
				inCode = run
			case run == inCode:
				inCode = 0
			}
			i += run - 1
		case '|':
			if inCode == 0 {
				spans = append(spans, trimSpan(line, cellStart, i))
				cellStart = i + 1
			}
		}
	}
	spans = append(spans, trimSpan(line, cellStart, end))
	return spans
}

func trimSpan(line string, lo, hi int) cellSpan {
	if hi > len(line) {
		hi = len(line)
	}
	for lo < hi && (line[lo] == ' ' || line[lo] == '\t') {
		lo++
	}
	for hi > lo && (line[hi-1] == ' ' || line[hi-1] == '\t') {
		hi--
	}
	return cellSpan{lo: lo, hi: hi}
}
