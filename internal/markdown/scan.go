package markdown

import (
	"strconv"
	"strings"
)

const (
	markdownNestingLimit = 64
	defaultTabWidth      = 2
)

// srcLine is one physical line. For blockquote content, start points past
// the '>' prefix while end still covers the original newline.
type srcLine struct {
	text  string
	start int
	end   int
}

func splitLines(text string, base int) []srcLine {
	if text == "" {
		return nil
	}
	lines := make([]srcLine, 0, strings.Count(text, "\n")+1)
	pos := 0
	for pos < len(text) {
		nl := strings.IndexByte(text[pos:], '\n')
		if nl < 0 {
			lines = append(lines, srcLine{text: text[pos:], start: base + pos, end: base + len(text)})
			break
		}
		body := text[pos : pos+nl]
		body = strings.TrimSuffix(body, "\r")
		lines = append(lines, srcLine{text: body, start: base + pos, end: base + pos + nl + 1})
		pos += nl + 1
	}
	return lines
}

// token is a block-level candidate produced by the scanner. The builder turns
// tokens into Blocks and runs the inline parser over their content.
type token struct {
	kind       BlockKind
	lines      []srcLine
	afterBlank bool

	level   int
	content textMap

	ordered bool
	number  int
	marker  string
	depth   int

	info       string
	closed     bool
	codeLines  []string
	fenceStrip int

	inner []token

	align []Alignment
}

func (t token) rng() Range {
	if len(t.lines) == 0 {
		return Range{}
	}
	return Range{Start: t.lines[0].start, End: t.lines[len(t.lines)-1].end}
}

type scanner struct {
	lines    []srcLine
	pos      int
	tabWidth int
	depth    int
}

// scanBlocks classifies lines into block tokens. Blank lines separate tokens
// and are never emitted. Scanning never fails: malformed constructs degrade to
// the closest classification.
func scanBlocks(lines []srcLine, tabWidth int) []token {
	return scanBlocksWithDepth(lines, tabWidth, 0)
}

func scanBlocksWithDepth(lines []srcLine, tabWidth int, depth int) []token {
	if tabWidth <= 0 {
		tabWidth = defaultTabWidth
	}
	s := &scanner{lines: lines, tabWidth: tabWidth, depth: depth}
	var out []token
	blank := false
	for s.pos < len(s.lines) {
		if isBlankLine(s.lines[s.pos].text) {
			blank = true
			s.pos++
			continue
		}
		tok := s.next()
		tok.afterBlank = blank
		blank = false
		out = append(out, tok)
	}
	return out
}

func (s *scanner) next() token {
	line := s.lines[s.pos]
	indent, _ := leadingIndent(line.text, s.tabWidth)
	body := strings.TrimLeft(line.text, " \t")

	if fence, ok := detectFence(body); ok {
		fence.indent = indent
		return s.fencedCode(fence)
	}
	if tok, ok := s.heading(); ok {
		return tok
	}
	if isThematicBreak(body) {
		s.pos++
		return token{kind: BlockThematicBreak, lines: []srcLine{line}}
	}
	if s.tableStartsAt(s.pos) {
		return s.table()
	}
	if strings.HasPrefix(body, ">") {
		return s.blockquote()
	}
	if marker, ok := parseListMarker(line.text, s.tabWidth); ok {
		return s.listItem(marker)
	}
	return s.paragraph()
}

// interrupts reports whether line idx starts a construct that ends a
// paragraph or list item continuation.
func (s *scanner) interrupts(idx int) bool {
	text := s.lines[idx].text
	body := strings.TrimLeft(text, " \t")
	if _, ok := detectFence(body); ok {
		return true
	}
	if _, _, _, ok := atxHeading(text); ok {
		return true
	}
	if isThematicBreak(body) {
		return true
	}
	if strings.HasPrefix(body, ">") {
		return true
	}
	if _, ok := parseListMarker(text, s.tabWidth); ok {
		return true
	}
	return s.tableStartsAt(idx)
}

type fenceSpec struct {
	delimiter byte
	length    int
	info      string
	indent    int
}

func detectFence(trimmed string) (fenceSpec, bool) {
	if trimmed == "" {
		return fenceSpec{}, false
	}
	first := trimmed[0]
	if first != '`' && first != '~' {
		return fenceSpec{}, false
	}
	count := countRepeatByte(trimmed, first)
	if count < 3 {
		return fenceSpec{}, false
	}
	info := strings.TrimSpace(trimmed[count:])
	if first == '`' && strings.ContainsRune(info, '`') {
		return fenceSpec{}, false
	}
	return fenceSpec{delimiter: first, length: count, info: info}, true
}

func isClosingFence(text string, open fenceSpec) bool {
	body := strings.TrimLeft(text, " \t")
	if body == "" || body[0] != open.delimiter {
		return false
	}
	count := countRepeatByte(body, open.delimiter)
	if count < open.length {
		return false
	}
	return strings.TrimSpace(body[count:]) == ""
}

// fencedCode consumes an opening fence, its literal lines and the closing
// fence. Without a closing fence the block runs to the end of the input.
func (s *scanner) fencedCode(fence fenceSpec) token {
	open := s.lines[s.pos]
	tok := token{
		kind:       BlockCode,
		lines:      []srcLine{open},
		info:       fence.info,
		fenceStrip: fence.indent,
	}
	s.pos++
	for s.pos < len(s.lines) {
		line := s.lines[s.pos]
		tok.lines = append(tok.lines, line)
		s.pos++
		if isClosingFence(line.text, fence) {
			tok.closed = true
			return tok
		}
		tok.codeLines = append(tok.codeLines, stripIndent(line.text, fence.indent))
	}
	return tok
}

// atxHeading parses "#"-prefixed headings. It returns the level and the byte
// bounds of the heading text within line.
func atxHeading(line string) (int, int, int, bool) {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	start := i
	for i < len(line) && line[i] == '#' {
		i++
	}
	level := i - start
	if level == 0 || level > 6 {
		return 0, 0, 0, false
	}
	if i < len(line) && line[i] != ' ' && line[i] != '\t' {
		return 0, 0, 0, false
	}
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	end := len(line)
	for end > i && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	// Optional closing sequence: " ##".
	closing := end
	for closing > i && line[closing-1] == '#' {
		closing--
	}
	if closing < end && (closing == i || line[closing-1] == ' ' || line[closing-1] == '\t') {
		end = closing
		for end > i && (line[end-1] == ' ' || line[end-1] == '\t') {
			end--
		}
	}
	return level, i, end, true
}

func (s *scanner) heading() (token, bool) {
	line := s.lines[s.pos]
	level, lo, hi, ok := atxHeading(line.text)
	if !ok {
		return token{}, false
	}
	s.pos++
	return token{
		kind:    BlockHeading,
		lines:   []srcLine{line},
		level:   level,
		content: contiguous(line.text[lo:hi], line.start+lo),
	}, true
}

func isThematicBreak(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	var mark byte
	count := 0
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		switch c {
		case ' ', '\t':
			continue
		case '-', '*', '_':
			if mark == 0 {
				mark = c
			} else if c != mark {
				return false
			}
			count++
		default:
			return false
		}
	}
	return count >= 3
}

func (s *scanner) blockquote() token {
	tok := token{kind: BlockQuote}
	var inner []srcLine
	for s.pos < len(s.lines) {
		line := s.lines[s.pos]
		if isBlankLine(line.text) {
			break
		}
		lead := len(line.text) - len(strings.TrimLeft(line.text, " \t"))
		if lead >= len(line.text) || line.text[lead] != '>' {
			break
		}
		cut := lead + 1
		if cut < len(line.text) && (line.text[cut] == ' ' || line.text[cut] == '\t') {
			cut++
		}
		tok.lines = append(tok.lines, line)
		inner = append(inner, srcLine{text: line.text[cut:], start: line.start + cut, end: line.end})
		s.pos++
	}
	if s.depth+1 >= markdownNestingLimit {
		tok.inner = []token{paragraphFromLines(inner)}
		return tok
	}
	tok.inner = scanBlocksWithDepth(inner, s.tabWidth, s.depth+1)
	return tok
}

type listMarker struct {
	ordered      bool
	number       int
	marker       string
	indent       int
	contentStart int
}

func parseListMarker(line string, tabWidth int) (listMarker, bool) {
	if isBlankLine(line) {
		return listMarker{}, false
	}
	indent, lead := leadingIndent(line, tabWidth)
	rest := line[lead:]
	if rest == "" {
		return listMarker{}, false
	}

	markerLen := 0
	m := listMarker{indent: indent}
	switch {
	case rest[0] == '-' || rest[0] == '*' || rest[0] == '+':
		markerLen = 1
		m.marker = rest[:1]
	case isDigit(rest[0]):
		j := 0
		for j < len(rest) && j < 9 && isDigit(rest[j]) {
			j++
		}
		if j >= len(rest) || (rest[j] != '.' && rest[j] != ')') {
			return listMarker{}, false
		}
		m.ordered = true
		m.number, _ = strconv.Atoi(rest[:j])
		markerLen = j + 1
		m.marker = rest[:markerLen]
	default:
		return listMarker{}, false
	}

	after := rest[markerLen:]
	if after != "" && after[0] != ' ' && after[0] != '\t' {
		return listMarker{}, false
	}
	trimmed := strings.TrimLeft(after, " \t")
	m.contentStart = lead + markerLen + (len(after) - len(trimmed))
	return m, true
}

// listItem consumes a marker line plus lazy continuation lines.
func (s *scanner) listItem(marker listMarker) token {
	first := s.lines[s.pos]
	tok := token{
		kind:    BlockListItem,
		lines:   []srcLine{first},
		ordered: marker.ordered,
		number:  marker.number,
		marker:  marker.marker,
		depth:   marker.indent / s.tabWidth,
	}
	tok.content.appendLine("\n", trimRightSpace(first.text[marker.contentStart:]), first.start+marker.contentStart)
	s.pos++
	for s.pos < len(s.lines) {
		line := s.lines[s.pos]
		if isBlankLine(line.text) || s.interrupts(s.pos) {
			break
		}
		lead := len(line.text) - len(strings.TrimLeft(line.text, " \t"))
		tok.content.appendLine("\n", trimRightSpace(line.text[lead:]), line.start+lead)
		tok.lines = append(tok.lines, line)
		s.pos++
	}
	return tok
}

func (s *scanner) paragraph() token {
	tok := token{kind: BlockParagraph}
	for s.pos < len(s.lines) {
		line := s.lines[s.pos]
		if isBlankLine(line.text) {
			break
		}
		if len(tok.lines) > 0 && s.interrupts(s.pos) {
			break
		}
		lead := len(line.text) - len(strings.TrimLeft(line.text, " \t"))
		tok.content.appendLine("\n", trimRightSpace(line.text[lead:]), line.start+lead)
		tok.lines = append(tok.lines, line)
		s.pos++
	}
	return tok
}

func paragraphFromLines(lines []srcLine) token {
	tok := token{kind: BlockParagraph}
	for _, line := range lines {
		if isBlankLine(line.text) {
			continue
		}
		lead := len(line.text) - len(strings.TrimLeft(line.text, " \t"))
		tok.content.appendLine("\n", trimRightSpace(line.text[lead:]), line.start+lead)
		tok.lines = append(tok.lines, line)
	}
	return tok
}

func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

// leadingIndent returns the indentation width in columns (tabs advance to the
// next multiple of tabWidth) and the number of leading whitespace bytes.
func leadingIndent(line string, tabWidth int) (int, int) {
	if tabWidth <= 0 {
		tabWidth = defaultTabWidth
	}
	cols := 0
	i := 0
	for i < len(line) {
		switch line[i] {
		case ' ':
			cols++
		case '\t':
			cols += tabWidth - cols%tabWidth
		default:
			return cols, i
		}
		i++
	}
	return cols, i
}

func stripIndent(line string, n int) string {
	i := 0
	for i < len(line) && i < n && line[i] == ' ' {
		i++
	}
	return line[i:]
}

func trimRightSpace(s string) string {
	return strings.TrimRight(s, " \t")
}

func countRepeatByte(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
