package render

import (
	"fmt"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/textutil"
)

// TablePolicy decides what happens to table cells wider than their column.
type TablePolicy int

const (
	TableWrap TablePolicy = iota
	TableTruncate
)

func (p TablePolicy) String() string {
	if p == TableTruncate {
		return "truncate"
	}
	return "wrap"
}

// ParseTablePolicy accepts "wrap" or "truncate".
func ParseTablePolicy(s string) (TablePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wrap":
		return TableWrap, nil
	case "truncate":
		return TableTruncate, nil
	default:
		return TableWrap, fmt.Errorf("unknown table policy %q", s)
	}
}

const (
	DefaultWidth      = 80
	DefaultListIndent = 2
	minWidth          = 4
	codeIndent        = "    "
	quotePrefix       = "│ "
)

// Options controls the visual transform.
type Options struct {
	Width       int
	ListIndent  int
	TablePolicy TablePolicy
	// WrapCode wraps long code lines instead of truncating them.
	WrapCode bool
	TabWidth int
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	o.Width = max(o.Width, minWidth)
	if o.ListIndent <= 0 {
		o.ListIndent = DefaultListIndent
	}
	if o.TabWidth <= 0 {
		o.TabWidth = textutil.DefaultTabWidth
	}
	return o
}

// Renderer projects documents into display lines.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.normalized()}
}

func (r *Renderer) Options() Options { return r.opts }

// SetWidth changes the target width for subsequent renders.
func (r *Renderer) SetWidth(width int) {
	r.opts.Width = width
	r.opts = r.opts.normalized()
}

// draft is a display row before its source range is settled. Content rows
// carry a proposed end offset in src; decoration rows carry none.
type draft struct {
	runs  []Run
	src   markdown.Range
	node  markdown.NodeID
	kind  markdown.BlockKind
	level int
	decor bool
}

// Render builds a fresh Index for doc.
func (r *Renderer) Render(doc *markdown.Document) *Index {
	ix := &Index{width: r.opts.Width, revision: doc.Revision(), docLen: doc.Len()}
	var prev markdown.Block
	for _, b := range doc.Blocks() {
		drafts := r.block(b, r.opts.Width, 0)
		if len(drafts) == 0 {
			continue
		}
		if prev != nil && needsGap(prev, b) {
			at := prev.SourceRange().End
			ix.lines = append(ix.lines, Line{Source: markdown.Range{Start: at, End: at}, Node: prev.NodeID(), Kind: prev.Kind()})
		}
		ix.lines = append(ix.lines, settle(drafts, b.SourceRange())...)
		prev = b
	}
	ix.first = make(map[markdown.NodeID]int)
	for i, l := range ix.lines {
		if _, seen := ix.first[l.Node]; !seen {
			ix.first[l.Node] = i
		}
	}
	return ix
}

// settle turns drafts into lines whose source ranges partition rng: each
// content row starts where the previous one ended, the last content row
// ends at rng.End and decoration rows get an empty range at their position.
func settle(drafts []draft, rng markdown.Range) []Line {
	last := -1
	for i, d := range drafts {
		if !d.decor {
			last = i
		}
	}
	cur := rng.Start
	out := make([]Line, len(drafts))
	for i, d := range drafts {
		src := markdown.Range{Start: cur, End: cur}
		if !d.decor {
			end := min(max(d.src.End, cur), rng.End)
			if i == last {
				end = rng.End
			}
			src.End = end
			cur = end
		}
		out[i] = Line{Runs: d.runs, Source: src, Node: d.node, Kind: d.kind, Level: d.level}
	}
	return out
}

// needsGap reports whether a blank row separates two sibling blocks.
// Consecutive list items stay together.
func needsGap(prev, next markdown.Block) bool {
	return prev.Kind() != markdown.BlockListItem || next.Kind() != markdown.BlockListItem
}

func (r *Renderer) block(b markdown.Block, width, listDepth int) []draft {
	switch blk := b.(type) {
	case *markdown.Heading:
		prefix := Run{Text: strings.Repeat("#", blk.Level) + " ", Style: StyleHeading | StyleBold}
		runs := inlineRuns(blk.Inlines, StyleHeading|StyleBold)
		drafts := r.flow(runs, prefix, Run{}, width, blk.Range, blk)
		for i := range drafts {
			drafts[i].level = blk.Level
		}
		return drafts
	case *markdown.Paragraph:
		return r.flow(inlineRuns(blk.Inlines, 0), Run{}, Run{}, width, blk.Range, blk)
	case *markdown.ListItem:
		return r.listItem(blk, width, listDepth)
	case *markdown.CodeBlock:
		return r.codeBlock(blk, width)
	case *markdown.Blockquote:
		return r.blockquote(blk, width, listDepth)
	case *markdown.Table:
		return r.renderTable(blk, width)
	case *markdown.ThematicBreak:
		return []draft{{
			runs: []Run{{Text: strings.Repeat("─", width), Style: StyleRule}},
			src:  blk.Range,
			node: blk.ID,
			kind: markdown.BlockThematicBreak,
		}}
	default:
		return nil
	}
}

// children renders nested blocks at the given width.
func (r *Renderer) children(blocks []markdown.Block, width, listDepth int) []draft {
	var out []draft
	var prev markdown.Block
	for _, b := range blocks {
		drafts := r.block(b, width, listDepth)
		if len(drafts) == 0 {
			continue
		}
		if prev != nil && needsGap(prev, b) {
			out = append(out, draft{node: prev.NodeID(), kind: prev.Kind(), decor: true})
		}
		out = append(out, drafts...)
		prev = b
	}
	return out
}

// flow wraps runs into rows. The first row starts with first, later rows
// with hang; src is split across the rows proportionally.
func (r *Renderer) flow(runs []Run, first, hang Run, width int, src markdown.Range, b markdown.Block) []draft {
	lead := max(textutil.DisplayWidth(first.Text), textutil.DisplayWidth(hang.Text))
	rows := wrapRuns(runs, max(width-lead, 1))
	ends := partition(src, rows)
	out := make([]draft, len(rows))
	for i, row := range rows {
		prefix := hang
		if i == 0 {
			prefix = first
		}
		var line []Run
		if prefix.Text != "" {
			line = append(line, prefix)
		}
		out[i] = draft{
			runs: append(line, row.runs...),
			src:  markdown.Range{Start: src.Start, End: ends[i]},
			node: b.NodeID(),
			kind: b.Kind(),
		}
	}
	return out
}

func (r *Renderer) listItem(li *markdown.ListItem, width, depth int) []draft {
	bullet := bulletSymbol(depth, li) + " "
	first := Run{Text: bullet, Style: StyleBullet}
	hang := Run{Text: strings.Repeat(" ", textutil.DisplayWidth(bullet))}
	own := markdown.Range{Start: li.Range.Start, End: max(li.Content.End, li.Range.Start)}
	if len(li.Items) == 0 {
		own.End = li.Range.End
	}
	out := r.flow(taskBox(inlineRuns(li.Inlines, 0)), first, hang, width, own, li)

	indent := r.opts.ListIndent
	nested := r.children(li.Items, max(width-indent, 1), depth+1)
	pad := Run{Text: strings.Repeat(" ", indent)}
	for _, d := range nested {
		d.runs = append([]Run{pad}, d.runs...)
		out = append(out, d)
	}
	return out
}

func (r *Renderer) blockquote(bq *markdown.Blockquote, width, listDepth int) []draft {
	inner := r.children(bq.Blocks, max(width-textutil.DisplayWidth(quotePrefix), 1), listDepth)
	if len(inner) == 0 {
		return []draft{{runs: []Run{{Text: quotePrefix, Style: StyleQuote}}, src: bq.Range, node: bq.ID, kind: markdown.BlockQuote}}
	}
	for i := range inner {
		runs := make([]Run, 0, len(inner[i].runs)+1)
		runs = append(runs, Run{Text: quotePrefix, Style: StyleQuote})
		for _, run := range inner[i].runs {
			runs = append(runs, Run{Text: run.Text, Style: run.Style | StyleQuote})
		}
		inner[i].runs = runs
	}
	return inner
}

func (r *Renderer) codeBlock(cb *markdown.CodeBlock, width int) []draft {
	var out []draft
	if label := codeLabel(cb.Info); label != "" {
		out = append(out, draft{
			runs: []Run{{Text: codeIndent + "[" + label + "]", Style: StyleCodeBlock | StyleBold}},
			src:  markdown.Range{Start: cb.Range.Start, End: cb.LineEnds[0]},
			node: cb.ID,
			kind: markdown.BlockCode,
		})
	}
	avail := max(width-len(codeIndent), 1)
	for i, line := range cb.Lines {
		text := textutil.Sanitize(textutil.ExpandTabs(line, r.opts.TabWidth))
		runs := []Run{{Text: text, Style: StyleCodeBlock}}
		src := markdown.Range{Start: cb.LineEnds[i], End: cb.LineEnds[i+1]}
		var rows []wrappedRow
		if r.opts.WrapCode {
			rows = hardWrap(runs, avail)
		} else {
			rows = []wrappedRow{{runs: truncateRuns(runs, avail), runes: 1}}
		}
		ends := partition(src, rows)
		for k, row := range rows {
			out = append(out, draft{
				runs: append([]Run{{Text: codeIndent, Style: StyleCodeBlock}}, row.runs...),
				src:  markdown.Range{Start: src.Start, End: ends[k]},
				node: cb.ID,
				kind: markdown.BlockCode,
			})
		}
	}
	if len(out) == 0 {
		out = append(out, draft{
			runs: []Run{{Text: codeIndent, Style: StyleCodeBlock}},
			src:  cb.Range,
			node: cb.ID,
			kind: markdown.BlockCode,
		})
	}
	return out
}

// codeLabel returns the display name for a fence info string, canonical
// when the language is known.
func codeLabel(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	if lang, ok := enry.GetLanguageByAlias(fields[0]); ok {
		return lang
	}
	return textutil.Sanitize(fields[0])
}
