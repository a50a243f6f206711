package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// inlineRecursionLimit caps link-text nesting; deeper brackets stay literal.
const inlineRecursionLimit = 32

type itemKind int

const (
	itemText itemKind = iota
	itemDelim
	itemNode
)

// item is an entry of the working list the inline parser builds before
// emphasis resolution. lo/hi are byte positions in the block's literal text.
type item struct {
	kind     itemKind
	lo, hi   int
	literal  string
	node     Inline
	ch       byte
	origLen  int
	canOpen  bool
	canClose bool
}

func (it *item) count() int { return it.hi - it.lo }

type inlineParser struct {
	m     textMap
	src   string
	depth int
}

// parseInlines resolves the spans of a block's literal text. The result
// covers the text exactly; constructs that fail to close degrade to Text.
func parseInlines(m textMap) []Inline {
	if m.text == "" {
		return nil
	}
	p := &inlineParser{m: m, src: m.text}
	return p.parse(0, len(m.text))
}

func (p *inlineParser) parse(lo, hi int) []Inline {
	p.depth++
	defer func() { p.depth-- }()
	var items []*item

	addText := func(from, to int, literal string) {
		if n := len(items); n > 0 && items[n-1].kind == itemText && items[n-1].hi == from {
			items[n-1].hi = to
			items[n-1].literal += literal
			return
		}
		items = append(items, &item{kind: itemText, lo: from, hi: to, literal: literal})
	}
	addNode := func(from, to int, node Inline) {
		items = append(items, &item{kind: itemNode, lo: from, hi: to, node: node})
	}

	src := p.src
	i := lo
	for i < hi {
		c := src[i]
		switch {
		case c == '\\':
			if i+1 < hi && isASCIIPunct(src[i+1]) {
				addText(i, i+2, src[i+1:i+2])
				i += 2
				continue
			}
			addText(i, i+1, "\\")
			i++
		case c == '`':
			n := countRepeatByte(src[i:hi], '`')
			closeAt := findClosingBackticks(src, i+n, hi, n)
			if closeAt < 0 {
				addText(i, i+n, src[i:i+n])
				i += n
				continue
			}
			addNode(i, closeAt+n, Inline{
				Kind:    InlineCode,
				Range:   p.m.span(i, closeAt+n),
				Literal: normalizeCodeSpan(src[i+n : closeAt]),
			})
			i = closeAt + n
		case c == '!' && i+1 < hi && src[i+1] == '[':
			if node, end, ok := p.link(i, hi, true); ok {
				addNode(i, end, node)
				i = end
				continue
			}
			addText(i, i+1, "!")
			i++
		case c == '[':
			if node, end, ok := p.link(i, hi, false); ok {
				addNode(i, end, node)
				i = end
				continue
			}
			addText(i, i+1, "[")
			i++
		case c == '<':
			if node, end, ok := p.autolink(i, hi); ok {
				addNode(i, end, node)
				i = end
				continue
			}
			addText(i, i+1, "<")
			i++
		case c == '*' || c == '_' || c == '~':
			n := countRepeatByte(src[i:hi], c)
			if c == '~' && n != 2 {
				addText(i, i+n, src[i:i+n])
				i += n
				continue
			}
			canOpen, canClose := p.flanking(c, i, i+n, lo, hi)
			items = append(items, &item{
				kind: itemDelim, lo: i, hi: i + n, ch: c, origLen: n,
				canOpen: canOpen, canClose: canClose,
			})
			i += n
		default:
			j := i + 1
			for j < hi && !isInlineSpecial(src[j]) {
				j++
			}
			addText(i, j, src[i:j])
			i = j
		}
	}

	items = p.processEmphasis(items)
	return p.toInlines(items)
}

// processEmphasis matches delimiter runs left to right: each closer pairs
// with the nearest compatible opener of the same character.
func (p *inlineParser) processEmphasis(items []*item) []*item {
	for ci := 0; ci < len(items); ci++ {
		closer := items[ci]
		if closer.kind != itemDelim || !closer.canClose {
			continue
		}
		for closer.count() > 0 {
			oi := -1
			for k := ci - 1; k >= 0; k-- {
				o := items[k]
				if o.kind == itemDelim && o.ch == closer.ch && o.canOpen && o.count() > 0 && compatibleRuns(o, closer) {
					oi = k
					break
				}
			}
			if oi < 0 {
				break
			}
			opener := items[oi]
			use, weight := emphasisStrength(opener, closer)
			start := opener.hi - use
			end := closer.lo + use
			em := &item{
				kind: itemNode,
				lo:   start,
				hi:   end,
				node: Inline{
					Kind:     InlineEmphasis,
					Weight:   weight,
					Range:    p.m.span(start, end),
					Children: p.toInlines(items[oi+1 : ci]),
				},
			}
			opener.hi -= use
			closer.lo += use

			tail := append([]*item{em}, items[ci:]...)
			items = append(items[:oi+1], tail...)
			ci = oi + 2
			if opener.count() == 0 {
				items = append(items[:oi], items[oi+1:]...)
				ci--
			}
		}
	}
	return items
}

func compatibleRuns(opener, closer *item) bool {
	if closer.ch == '~' {
		return opener.count() == 2 && closer.count() == 2
	}
	if opener.canClose || closer.canOpen {
		sum := opener.origLen + closer.origLen
		if sum%3 == 0 && (opener.origLen%3 != 0 || closer.origLen%3 != 0) {
			return false
		}
	}
	return true
}

func emphasisStrength(opener, closer *item) (int, Weight) {
	oc, cc := opener.count(), closer.count()
	switch {
	case closer.ch == '~':
		return 2, WeightStrike
	case oc >= 3 && cc >= 3:
		return 3, WeightBoth
	case oc >= 2 && cc >= 2:
		return 2, WeightBold
	default:
		return 1, WeightItalic
	}
}

// toInlines converts working items into spans, turning leftover delimiter
// runs into literal text and merging adjacent text.
func (p *inlineParser) toInlines(items []*item) []Inline {
	var out []Inline
	lastHi := -1
	for _, it := range items {
		switch it.kind {
		case itemText, itemDelim:
			if it.count() <= 0 {
				continue
			}
			literal := it.literal
			if it.kind == itemDelim {
				literal = p.src[it.lo:it.hi]
			}
			if n := len(out); n > 0 && out[n-1].Kind == InlineText && lastHi == it.lo {
				out[n-1].Literal += literal
				out[n-1].Range.End = p.m.span(it.lo, it.hi).End
				lastHi = it.hi
				continue
			}
			out = append(out, Inline{Kind: InlineText, Range: p.m.span(it.lo, it.hi), Literal: literal})
		case itemNode:
			out = append(out, it.node)
		}
		lastHi = it.hi
	}
	return out
}

func (p *inlineParser) flanking(c byte, lo, hi, boundLo, boundHi int) (bool, bool) {
	before := ' '
	if lo > boundLo {
		before, _ = utf8.DecodeLastRuneInString(p.src[boundLo:lo])
	}
	after := ' '
	if hi < boundHi {
		after, _ = utf8.DecodeRuneInString(p.src[hi:boundHi])
	}
	left := !unicode.IsSpace(after) && (!isPunctRune(after) || unicode.IsSpace(before) || isPunctRune(before))
	right := !unicode.IsSpace(before) && (!isPunctRune(before) || unicode.IsSpace(after) || isPunctRune(after))
	if c == '_' {
		return left && (!right || isPunctRune(before)), right && (!left || isPunctRune(after))
	}
	return left, right
}

// link recognises [text](target) and ![alt](target) as a unit.
func (p *inlineParser) link(i, hi int, image bool) (Inline, int, bool) {
	if p.depth >= inlineRecursionLimit {
		return Inline{}, 0, false
	}
	open := i
	if image {
		open = i + 1
	}
	closeBracket := p.matchBracket(open+1, hi)
	if closeBracket < 0 || closeBracket+1 >= hi || p.src[closeBracket+1] != '(' {
		return Inline{}, 0, false
	}
	closeParen := p.matchParen(closeBracket+2, hi)
	if closeParen < 0 {
		return Inline{}, 0, false
	}
	end := closeParen + 1
	target := linkDestination(p.src[closeBracket+2 : closeParen])
	if image {
		return Inline{
			Kind:    InlineImage,
			Range:   p.m.span(i, end),
			Literal: unescape(p.src[open+1 : closeBracket]),
			Target:  target,
		}, end, true
	}
	return Inline{
		Kind:     InlineLink,
		Range:    p.m.span(i, end),
		Target:   target,
		Children: p.parse(open+1, closeBracket),
	}, end, true
}

func (p *inlineParser) autolink(i, hi int) (Inline, int, bool) {
	end := strings.IndexByte(p.src[i+1:hi], '>')
	if end <= 0 {
		return Inline{}, 0, false
	}
	candidate := p.src[i+1 : i+1+end]
	if strings.ContainsAny(candidate, " \t\n<") || !isAutolink(candidate) {
		return Inline{}, 0, false
	}
	display := strings.TrimPrefix(candidate, "mailto:")
	stop := i + end + 2
	return Inline{
		Kind:   InlineLink,
		Range:  p.m.span(i, stop),
		Target: candidate,
		Children: []Inline{{
			Kind:    InlineText,
			Range:   p.m.span(i+1, i+1+end),
			Literal: display,
		}},
	}, stop, true
}

func (p *inlineParser) matchBracket(from, hi int) int {
	depth := 0
	for i := from; i < hi; i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '`':
			n := countRepeatByte(p.src[i:hi], '`')
			if closeAt := findClosingBackticks(p.src, i+n, hi, n); closeAt >= 0 {
				i = closeAt + n - 1
			} else {
				i += n - 1
			}
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func (p *inlineParser) matchParen(from, hi int) int {
	depth := 0
	for i := from; i < hi; i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func linkDestination(raw string) string {
	dest := strings.TrimSpace(raw)
	if strings.HasPrefix(dest, "<") {
		if end := strings.IndexByte(dest, '>'); end > 0 {
			return dest[1:end]
		}
	}
	if idx := strings.IndexAny(dest, " \t"); idx >= 0 {
		dest = dest[:idx]
	}
	return unescape(dest)
}

func findClosingBackticks(src string, from, hi, count int) int {
	for i := from; i < hi; {
		if src[i] != '`' {
			i++
			continue
		}
		n := countRepeatByte(src[i:hi], '`')
		if n == count {
			return i
		}
		i += n
	}
	return -1
}

func normalizeCodeSpan(code string) string {
	code = strings.ReplaceAll(code, "\n", " ")
	if len(code) >= 2 && code[0] == ' ' && code[len(code)-1] == ' ' && strings.Trim(code, " ") != "" {
		code = code[1 : len(code)-1]
	}
	return code
}

func isAutolink(s string) bool {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "mailto:") {
		return true
	}
	at := strings.IndexByte(s, '@')
	return at > 0 && strings.Contains(s[at:], ".")
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isInlineSpecial(c byte) bool {
	switch c {
	case '\\', '`', '!', '[', '<', '*', '_', '~':
		return true
	}
	return false
}

func isASCIIPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

func isPunctRune(r rune) bool {
	if r < utf8.RuneSelf {
		return isASCIIPunct(byte(r))
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
