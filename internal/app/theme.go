package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/markln/internal/render"
)

// ColorTheme defines application colors.
type ColorTheme struct {
	Name string

	Background tcell.Color
	Foreground tcell.Color
	GutterFg   tcell.Color
	StatusBg   tcell.Color
	StatusFg   tcell.Color
	OverlayBg  tcell.Color
	OverlayFg  tcell.Color
	ActiveBg   tcell.Color
	ActiveFg   tcell.Color
	ErrorFg    tcell.Color

	HeadingFg     tcell.Color
	CodeFg        tcell.Color
	CodeBlockBg   tcell.Color
	CodeBlockFg   tcell.Color
	LinkFg        tcell.Color
	QuoteFg       tcell.Color
	RuleFg        tcell.Color
	BulletFg      tcell.Color
	TableBorderFg tcell.Color
}

// GetColorTheme returns the scheme called name, or the dark scheme for an
// unknown name.
func GetColorTheme(name string) ColorTheme {
	switch name {
	case "light":
		return ColorTheme{
			Name:          "light",
			Background:    tcell.ColorDefault,
			Foreground:    tcell.ColorDefault,
			GutterFg:      tcell.Color245,
			StatusBg:      tcell.Color254,
			StatusFg:      tcell.Color235,
			OverlayBg:     tcell.Color255,
			OverlayFg:     tcell.Color235,
			ActiveBg:      tcell.Color25,
			ActiveFg:      tcell.ColorWhite,
			ErrorFg:       tcell.Color160,
			HeadingFg:     tcell.Color25,
			CodeFg:        tcell.Color30,
			CodeBlockBg:   tcell.Color254,
			CodeBlockFg:   tcell.Color236,
			LinkFg:        tcell.Color27,
			QuoteFg:       tcell.Color242,
			RuleFg:        tcell.Color248,
			BulletFg:      tcell.Color130,
			TableBorderFg: tcell.Color245,
		}
	case "mono":
		return ColorTheme{
			Name:          "mono",
			Background:    tcell.ColorDefault,
			Foreground:    tcell.ColorDefault,
			GutterFg:      tcell.ColorDefault,
			StatusBg:      tcell.ColorDefault,
			StatusFg:      tcell.ColorDefault,
			OverlayBg:     tcell.ColorDefault,
			OverlayFg:     tcell.ColorDefault,
			ActiveBg:      tcell.ColorDefault,
			ActiveFg:      tcell.ColorDefault,
			ErrorFg:       tcell.ColorDefault,
			HeadingFg:     tcell.ColorDefault,
			CodeFg:        tcell.ColorDefault,
			CodeBlockBg:   tcell.ColorDefault,
			CodeBlockFg:   tcell.ColorDefault,
			LinkFg:        tcell.ColorDefault,
			QuoteFg:       tcell.ColorDefault,
			RuleFg:        tcell.ColorDefault,
			BulletFg:      tcell.ColorDefault,
			TableBorderFg: tcell.ColorDefault,
		}
	default:
		return ColorTheme{
			Name:          "dark",
			Background:    tcell.ColorDefault,
			Foreground:    tcell.ColorDefault,
			GutterFg:      tcell.Color240,
			StatusBg:      tcell.Color236,
			StatusFg:      tcell.Color252,
			OverlayBg:     tcell.Color235,
			OverlayFg:     tcell.Color252,
			ActiveBg:      tcell.Color33,
			ActiveFg:      tcell.ColorWhite,
			ErrorFg:       tcell.Color203,
			HeadingFg:     tcell.Color75,
			CodeFg:        tcell.Color44,  // brighter cyan text for code
			CodeBlockBg:   tcell.Color234, // darker grey background for fenced code
			CodeBlockFg:   tcell.Color252,
			LinkFg:        tcell.Color81,
			QuoteFg:       tcell.Color246,
			RuleFg:        tcell.Color240,
			BulletFg:      tcell.Color214,
			TableBorderFg: tcell.Color242,
		}
	}
}

func (t ColorTheme) base() tcell.Style {
	return tcell.StyleDefault.Background(t.Background).Foreground(t.Foreground)
}

func (t ColorTheme) status() tcell.Style {
	return tcell.StyleDefault.Background(t.StatusBg).Foreground(t.StatusFg)
}

func (t ColorTheme) overlay(active bool) tcell.Style {
	if active {
		style := tcell.StyleDefault.Background(t.ActiveBg).Foreground(t.ActiveFg)
		if t.Name == "mono" {
			style = style.Reverse(true)
		}
		return style
	}
	return tcell.StyleDefault.Background(t.OverlayBg).Foreground(t.OverlayFg)
}

// runStyle maps a preview run style onto terminal attributes. Later
// matches override colours set by earlier ones, so a link inside a heading
// keeps the link colour.
func (t ColorTheme) runStyle(s render.Style) tcell.Style {
	style := t.base()
	switch {
	case s.Has(render.StyleCodeBlock):
		style = style.Background(t.CodeBlockBg).Foreground(t.CodeBlockFg)
	case s.Has(render.StyleHeading):
		style = style.Foreground(t.HeadingFg)
	case s.Has(render.StyleQuote):
		style = style.Foreground(t.QuoteFg)
	}
	if s.Has(render.StyleRule) {
		style = style.Foreground(t.RuleFg)
	}
	if s.Has(render.StyleTableBorder) {
		style = style.Foreground(t.TableBorderFg)
	}
	if s.Has(render.StyleBullet) {
		style = style.Foreground(t.BulletFg)
	}
	if s.Has(render.StyleCode) {
		style = style.Foreground(t.CodeFg)
	}
	if s.Has(render.StyleLink) || s.Has(render.StyleImage) {
		style = style.Foreground(t.LinkFg).Underline(true)
	}
	if s.Has(render.StyleBold) {
		style = style.Bold(true)
	}
	if s.Has(render.StyleItalic) || s.Has(render.StyleQuote) {
		style = style.Italic(true)
	}
	if s.Has(render.StyleStrike) {
		style = style.StrikeThrough(true)
	}
	return style
}
