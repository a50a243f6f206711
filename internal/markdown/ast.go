package markdown

import "strconv"

// NodeID identifies a block across incremental re-parses. Zero is never assigned.
type NodeID uint64

func (id NodeID) String() string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// Range is a half-open byte range [Start, End) in document text coordinates.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether r covers no bytes.
func (r Range) Empty() bool { return r.End <= r.Start }

// Contains reports whether offset lies inside r.
func (r Range) Contains(offset int) bool { return offset >= r.Start && offset < r.End }

// ContainsRange reports whether o lies entirely inside r.
func (r Range) ContainsRange(o Range) bool { return o.Start >= r.Start && o.End <= r.End }

// Shift moves both ends of r by delta.
func (r Range) Shift(delta int) Range { return Range{Start: r.Start + delta, End: r.End + delta} }

// BlockKind enumerates the closed set of block variants.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockCode
	BlockQuote
	BlockTable
	BlockThematicBreak
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockListItem:
		return "list-item"
	case BlockCode:
		return "code"
	case BlockQuote:
		return "blockquote"
	case BlockTable:
		return "table"
	case BlockThematicBreak:
		return "thematic-break"
	default:
		return "unknown"
	}
}

// Block is one structural node of the document. The set of implementations is
// closed: Heading, Paragraph, ListItem, CodeBlock, Blockquote, Table and
// ThematicBreak.
type Block interface {
	Kind() BlockKind
	NodeID() NodeID
	SourceRange() Range
	Children() []Block
	node() *Node
}

// Node carries the identity and source extent shared by every block.
type Node struct {
	ID    NodeID
	Range Range
}

func (n *Node) NodeID() NodeID     { return n.ID }
func (n *Node) SourceRange() Range { return n.Range }
func (n *Node) node() *Node        { return n }

// Heading is an ATX heading.
type Heading struct {
	Node
	Level   int
	Content Range
	Inlines []Inline
}

func (*Heading) Kind() BlockKind    { return BlockHeading }
func (*Heading) Children() []Block { return nil }

// Paragraph is a run of non-blank lines that no other construct claimed.
type Paragraph struct {
	Node
	Content Range
	Inlines []Inline
}

func (*Paragraph) Kind() BlockKind    { return BlockParagraph }
func (*Paragraph) Children() []Block { return nil }

// ListItem is a single bullet or numbered item. Items indented deeper that
// follow it directly become its children.
type ListItem struct {
	Node
	Ordered bool
	Number  int
	Marker  string
	Depth   int
	Content Range
	Inlines []Inline
	Items   []Block
}

func (*ListItem) Kind() BlockKind      { return BlockListItem }
func (li *ListItem) Children() []Block { return li.Items }

// CodeBlock is a fenced code block. Lines are kept verbatim.
type CodeBlock struct {
	Node
	Info   string
	Lines  []string
	Closed bool
	// LineEnds holds the absolute end offset (after the newline) of the
	// opening fence followed by every content line.
	LineEnds []int
}

func (*CodeBlock) Kind() BlockKind    { return BlockCode }
func (*CodeBlock) Children() []Block { return nil }

// Blockquote groups consecutive '>' lines; its content is parsed as blocks.
type Blockquote struct {
	Node
	Blocks []Block
}

func (*Blockquote) Kind() BlockKind      { return BlockQuote }
func (bq *Blockquote) Children() []Block { return bq.Blocks }

// Alignment of a table column.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// TableCell is one cell of a table row.
type TableCell struct {
	Range   Range
	Inlines []Inline
}

// TableRow is a header or body row. Range covers the whole source line.
type TableRow struct {
	Range Range
	Cells []TableCell
}

// Table is a pipe table with a header row, a separator line and body rows.
type Table struct {
	Node
	Header    TableRow
	Separator Range
	Align     []Alignment
	Rows      []TableRow
}

func (*Table) Kind() BlockKind    { return BlockTable }
func (*Table) Children() []Block { return nil }

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	Node
}

func (*ThematicBreak) Kind() BlockKind    { return BlockThematicBreak }
func (*ThematicBreak) Children() []Block { return nil }

// InlineKind enumerates inline span variants.
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineEmphasis
	InlineCode
	InlineLink
	InlineImage
)

func (k InlineKind) String() string {
	switch k {
	case InlineText:
		return "text"
	case InlineEmphasis:
		return "emphasis"
	case InlineCode:
		return "code"
	case InlineLink:
		return "link"
	case InlineImage:
		return "image"
	default:
		return "unknown"
	}
}

// Weight is the strength of an Emphasis span.
type Weight int

const (
	WeightItalic Weight = iota + 1
	WeightBold
	WeightBoth
	WeightStrike
)

// Inline is a span inside a block's text. Literal holds the text for Text and
// CodeSpan, and the alt text for Image.
type Inline struct {
	Kind     InlineKind
	Range    Range
	Literal  string
	Weight   Weight
	Target   string
	Children []Inline
}

// PlainText flattens inlines into their visible text.
func PlainText(inlines []Inline) string {
	var buf []byte
	var walk func([]Inline)
	walk = func(list []Inline) {
		for _, in := range list {
			switch in.Kind {
			case InlineText, InlineCode, InlineImage:
				buf = append(buf, in.Literal...)
			case InlineEmphasis, InlineLink:
				walk(in.Children)
			}
		}
	}
	walk(inlines)
	return string(buf)
}

// Walk visits blocks depth-first in document order. Returning false from fn
// skips the children of the visited block.
func Walk(blocks []Block, fn func(b Block, depth int) bool) {
	var visit func([]Block, int)
	visit = func(list []Block, depth int) {
		for _, b := range list {
			if fn(b, depth) {
				visit(b.Children(), depth+1)
			}
		}
	}
	visit(blocks, 0)
}
