package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/kk-code-lab/markln/internal/render"
)

// Styles maps preview run styles to terminal output.
type Styles struct {
	enabled bool

	Heading     lipgloss.Style
	Code        lipgloss.Style
	CodeBlock   lipgloss.Style
	Link        lipgloss.Style
	Image       lipgloss.Style
	Quote       lipgloss.Style
	Bullet      lipgloss.Style
	TableBorder lipgloss.Style
	Rule        lipgloss.Style
	Dim         lipgloss.Style
	Base        lipgloss.Style
}

// NewStyles creates styles writing to w. With colorEnabled false every style
// is plain and Run returns text unchanged.
func NewStyles(w io.Writer, colorEnabled bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if !colorEnabled {
		r.SetColorProfile(termenv.Ascii)
		plain := r.NewStyle()
		return &Styles{
			Heading: plain, Code: plain, CodeBlock: plain, Link: plain, Image: plain,
			Quote: plain, Bullet: plain, TableBorder: plain, Rule: plain, Dim: plain, Base: plain,
		}
	}
	// Output may be piped under --color always; keep the 256 colour palette.
	if r.ColorProfile() == termenv.Ascii {
		r.SetColorProfile(termenv.ANSI256)
	}
	return &Styles{
		enabled:     true,
		Heading:     r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Code:        r.NewStyle().Foreground(lipgloss.Color("214")),
		CodeBlock:   r.NewStyle().Foreground(lipgloss.Color("250")),
		Link:        r.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
		Image:       r.NewStyle().Foreground(lipgloss.Color("13")),
		Quote:       r.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
		Bullet:      r.NewStyle().Foreground(lipgloss.Color("11")),
		TableBorder: r.NewStyle().Foreground(lipgloss.Color("8")),
		Rule:        r.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:         r.NewStyle().Foreground(lipgloss.Color("8")),
		Base:        r.NewStyle(),
	}
}

// Run renders one preview run.
func (s *Styles) Run(run render.Run) string {
	if !s.enabled || run.Text == "" {
		return run.Text
	}
	return s.styleFor(run.Style).Render(run.Text)
}

// Line renders a whole preview row.
func (s *Styles) Line(line render.Line) string {
	var b strings.Builder
	for _, run := range line.Runs {
		b.WriteString(s.Run(run))
	}
	return b.String()
}

func (s *Styles) styleFor(st render.Style) lipgloss.Style {
	var style lipgloss.Style
	switch {
	case st.Has(render.StyleHeading):
		style = s.Heading
	case st.Has(render.StyleCodeBlock):
		style = s.CodeBlock
	case st.Has(render.StyleCode):
		style = s.Code
	case st.Has(render.StyleImage):
		style = s.Image
	case st.Has(render.StyleLink):
		style = s.Link
	case st.Has(render.StyleBullet):
		style = s.Bullet
	case st.Has(render.StyleTableBorder):
		style = s.TableBorder
	case st.Has(render.StyleRule):
		style = s.Rule
	case st.Has(render.StyleQuote):
		style = s.Quote
	default:
		style = s.Base
	}
	if st.Has(render.StyleBold) {
		style = style.Bold(true)
	}
	if st.Has(render.StyleItalic) {
		style = style.Italic(true)
	}
	if st.Has(render.StyleStrike) {
		style = style.Strikethrough(true)
	}
	return style
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

func validateColorMode(mode string) error {
	switch mode {
	case "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("invalid --color %q: want auto, always or never", mode)
	}
}

// terminalWidth returns the width of w when it is a terminal, or the default
// preview width.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return render.DefaultWidth
}
