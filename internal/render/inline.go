package render

import (
	"strconv"
	"strings"

	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/textutil"
)

// inlineRuns flattens inline spans into styled runs. Text is sanitized so
// soft line breaks inside a paragraph turn into spaces.
func inlineRuns(inlines []markdown.Inline, base Style) []Run {
	var runs []Run
	for _, in := range inlines {
		switch in.Kind {
		case markdown.InlineText:
			runs = append(runs, Run{Text: textutil.Sanitize(in.Literal), Style: base})
		case markdown.InlineEmphasis:
			runs = append(runs, inlineRuns(in.Children, base|weightStyle(in.Weight))...)
		case markdown.InlineCode:
			runs = append(runs, Run{Text: textutil.Sanitize(in.Literal), Style: base | StyleCode})
		case markdown.InlineLink:
			runs = append(runs, inlineRuns(in.Children, base|StyleLink)...)
			if in.Target != "" && in.Target != markdown.PlainText(in.Children) {
				runs = append(runs,
					Run{Text: " (", Style: base},
					Run{Text: textutil.Sanitize(in.Target), Style: base | StyleLink},
					Run{Text: ")", Style: base},
				)
			}
		case markdown.InlineImage:
			alt := in.Literal
			if alt == "" {
				alt = "image"
			}
			runs = append(runs, Run{Text: textutil.Sanitize(alt), Style: base | StyleImage})
			if in.Target != "" {
				runs = append(runs,
					Run{Text: " (", Style: base},
					Run{Text: textutil.Sanitize(in.Target), Style: base | StyleLink},
					Run{Text: ")", Style: base},
				)
			}
		}
	}
	return runs
}

func weightStyle(w markdown.Weight) Style {
	switch w {
	case markdown.WeightBold:
		return StyleBold
	case markdown.WeightBoth:
		return StyleBold | StyleItalic
	case markdown.WeightStrike:
		return StyleStrike
	default:
		return StyleItalic
	}
}

func runsWidth(runs []Run) int {
	w := 0
	for _, r := range runs {
		w += textutil.DisplayWidth(r.Text)
	}
	return w
}

func bulletSymbol(depth int, item *markdown.ListItem) string {
	if item.Ordered {
		if item.Marker != "" {
			return item.Marker
		}
		return strconv.Itoa(item.Number) + "."
	}
	switch depth {
	case 0:
		return "•"
	case 1:
		return "◦"
	default:
		return "▪"
	}
}

// taskBox replaces a leading "[ ] " or "[x] " with a checkbox glyph.
func taskBox(runs []Run) []Run {
	if len(runs) == 0 {
		return runs
	}
	first := runs[0].Text
	var glyph string
	switch {
	case strings.HasPrefix(first, "[ ] "):
		glyph = "☐ "
	case strings.HasPrefix(first, "[x] "), strings.HasPrefix(first, "[X] "):
		glyph = "☑ "
	default:
		return runs
	}
	out := make([]Run, 0, len(runs)+1)
	out = append(out, Run{Text: glyph, Style: runs[0].Style | StyleBullet})
	if rest := first[4:]; rest != "" {
		out = append(out, Run{Text: rest, Style: runs[0].Style})
	}
	return append(out, runs[1:]...)
}
