package textutil

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Cluster is one user-perceived character with its display width.
type Cluster struct {
	Text  string
	Width int
}

// Clusters splits text into grapheme clusters.
func Clusters(text string) []Cluster {
	if text == "" {
		return nil
	}
	out := make([]Cluster, 0, len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Str()
		w := g.Width()
		if w < 1 {
			w = 1
		}
		out = append(out, Cluster{Text: cluster, Width: w})
	}
	return out
}

// Truncate cuts text to at most width columns, ending with ellipsis when
// anything was removed.
func Truncate(text string, width int, ellipsis string) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(text) <= width {
		return text
	}
	ellWidth := DisplayWidth(ellipsis)
	if ellWidth >= width {
		return ellipsis
	}
	target := width - ellWidth
	var b strings.Builder
	used := 0
	for _, c := range Clusters(text) {
		if used+c.Width > target {
			break
		}
		b.WriteString(c.Text)
		used += c.Width
	}
	b.WriteString(ellipsis)
	return b.String()
}
