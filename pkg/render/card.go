// Package render turns layout passes into drawable frames and computes the
// enter/update/exit patches between them.
//
// Card coordinates are relative to the card centre, which is the point the
// layout places. Frames carry absolute positions.
package render

import (
	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/model"
	"github.com/vanderheijden86/orgchart/pkg/textwrap"
)

// Glyph is the label of a card's toggle button.
type Glyph string

const (
	GlyphExpanded  Glyph = "−" // minus sign
	GlyphCollapsed Glyph = "+"
	GlyphLeaf      Glyph = ""
)

// GlyphFor maps a collapse state to its toggle label.
func GlyphFor(s collapse.State) Glyph {
	switch s {
	case collapse.Expanded:
		return GlyphExpanded
	case collapse.Collapsed:
		return GlyphCollapsed
	default:
		return GlyphLeaf
	}
}

// TextBlock is a stack of wrapped lines sharing one style. Y is the baseline
// of the first line.
type TextBlock struct {
	X, Y       float64
	Lines      []string
	LineHeight float64
	FontSize   float64
	Color      string
	Bold       bool
}

// Avatar is the square image in the top-left corner of a card.
type Avatar struct {
	Href string
	X, Y float64
	Size float64
}

// Toggle is the expand/collapse button on the bottom edge of a card.
type Toggle struct {
	CX, CY    float64
	R         float64
	Fill      string
	Stroke    string
	GlyphY    float64
	GlyphSize float64
}

// Card is the static content of one node. It is built once per record and
// shared by every frame that shows the node.
type Card struct {
	ID     string
	Width  float64
	Height float64
	Radius float64
	Fill   string
	Stroke string
	Font   string

	Avatar Avatar
	Name   TextBlock
	Fields []TextBlock
	Footer TextBlock
	Toggle Toggle
}

// Blocks returns every text block of the card from top to bottom.
func (c *Card) Blocks() []TextBlock {
	out := make([]TextBlock, 0, len(c.Fields)+2)
	out = append(out, c.Name)
	out = append(out, c.Fields...)
	if len(c.Footer.Lines) > 0 {
		out = append(out, c.Footer)
	}
	return out
}

// BuildCard lays out the content of a record's card.
func BuildCard(rec model.PersonRecord, cl config.CardLayout, pal config.Palette) *Card {
	left, top := -cl.Width/2, -cl.Height/2

	card := &Card{
		ID:     rec.ID,
		Width:  cl.Width,
		Height: cl.Height,
		Radius: cl.CornerRadius,
		Fill:   pal.Fill(rec.Title),
		Stroke: cl.Stroke,
		Font:   cl.FontFamily,
		Avatar: Avatar{
			Href: cl.AvatarURL,
			X:    left + cl.AvatarInset,
			Y:    top + cl.AvatarInset,
			Size: cl.AvatarSize,
		},
		Toggle: Toggle{
			CY:        cl.Height/2 - cl.ToggleRadius,
			R:         cl.ToggleRadius,
			Fill:      cl.ToggleFill,
			Stroke:    cl.ToggleStroke,
			GlyphY:    cl.Height/2 - cl.ToggleRadius + 4,
			GlyphSize: cl.GlyphFontSize,
		},
	}
	if cl.UseRecordImage && rec.Img != "" {
		card.Avatar.Href = rec.Img
	}

	x := left + cl.TextInset
	offsetY := top + cl.TextTop

	name := textwrap.NewBlock(rec.Name, cl.WrapWidth, cl.LineHeight)
	card.Name = TextBlock{
		X: x, Y: offsetY,
		Lines:      name.Lines,
		LineHeight: cl.LineHeight,
		FontSize:   cl.FontSize,
		Color:      cl.NameColor,
		Bold:       true,
	}
	offsetY += name.Height()

	for _, f := range cl.Fields {
		val := f.Format(rec.Field(f.Column))
		if val == "" {
			continue
		}
		color := f.Color
		if color == "" {
			color = cl.NameColor
		}
		card.Fields = append(card.Fields, TextBlock{
			X: x, Y: offsetY,
			Lines:      textwrap.Wrap(val, cl.WrapWidth),
			LineHeight: cl.LineHeight,
			FontSize:   cl.FontSize,
			Color:      color,
			Bold:       f.Weight == "bold",
		})
		// every field advances by the same amount however many lines it wrapped to
		offsetY += cl.FieldAdvance
	}

	card.Footer = TextBlock{
		X:          left + cl.FooterInset,
		Y:          cl.Height/2 - cl.FooterInset,
		Lines:      textwrap.Wrap(rec.OfficeLine(), cl.WrapWidth),
		LineHeight: cl.LineHeight,
		FontSize:   cl.FooterFontSize,
		Color:      cl.FooterColor,
	}
	return card
}
