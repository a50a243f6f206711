package markdown

// Snippet is a named piece of markup the editor can insert at the cursor.
type Snippet struct {
	Name string
	Text string
}

// Snippets is the catalogue offered by the insert menu, in menu order.
var Snippets = []Snippet{
	{Name: "Header 1", Text: "# Header"},
	{Name: "Header 2", Text: "## Header"},
	{Name: "Header 3", Text: "### Header"},
	{Name: "Bold", Text: "**bold text**"},
	{Name: "Italic", Text: "*italic text*"},
	{Name: "Bold Italic", Text: "***bold italic***"},
	{Name: "Strikethrough", Text: "~~strikethrough text~~"},
	{Name: "Inline Code", Text: "`code`"},
	{Name: "Code Block", Text: "```\ncode block\n```"},
	{Name: "Blockquote", Text: "> blockquote"},
	{Name: "Unordered List", Text: "- list item"},
	{Name: "Ordered List", Text: "1. list item"},
	{Name: "Link", Text: "[text](url)"},
	{Name: "Image", Text: "![alt](image.jpg)"},
	{Name: "Horizontal Rule", Text: "---"},
	{Name: "Table", Text: "| Header | Header |\n|--------|--------|\n| Cell   | Cell   |"},
	{Name: "Task List", Text: "- [ ] task"},
}

// SnippetByName looks a snippet up case-sensitively.
func SnippetByName(name string) (Snippet, bool) {
	for _, s := range Snippets {
		if s.Name == name {
			return s, true
		}
	}
	return Snippet{}, false
}
