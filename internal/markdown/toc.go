package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TOCEntry is one heading of the outline.
type TOCEntry struct {
	Level int
	Text  string
	Slug  string
	ID    NodeID
	Range Range
}

// ExtractTOC lists every heading in document order, including headings
// nested in blockquotes and list items, with their levels unchanged.
func ExtractTOC(doc *Document) []TOCEntry {
	var entries []TOCEntry
	slugs := make(map[string]int)
	Walk(doc.Blocks(), func(b Block, _ int) bool {
		h, ok := b.(*Heading)
		if !ok {
			return true
		}
		text := norm.NFC.String(collapseSpace(PlainText(h.Inlines)))
		entries = append(entries, TOCEntry{
			Level: h.Level,
			Text:  text,
			Slug:  uniqueSlug(slugs, Slugify(text)),
			ID:    h.ID,
			Range: h.Range,
		})
		return true
	})
	return entries
}

// Slugify produces a GitHub style anchor: lower case, punctuation removed,
// spaces turned into hyphens.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(strings.ToLower(text)) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('-')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

func uniqueSlug(seen map[string]int, slug string) string {
	n, dup := seen[slug]
	seen[slug] = n + 1
	if !dup {
		return slug
	}
	for {
		candidate := slug + "-" + strconv.Itoa(n)
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
		n++
		seen[slug] = n + 1
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
