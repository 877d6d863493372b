package render

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"
	"sync"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	black       = color.RGBA{0, 0, 0, 0xff}
	white       = color.RGBA{0xff, 0xff, 0xff, 0xff}
	avatarColor = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
)

type faceKey struct {
	bold bool
	size float64
}

var (
	fontOnce sync.Once
	fontErr  error
	regular  *opentype.Font
	bold     *opentype.Font

	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

func loadFonts() error {
	fontOnce.Do(func() {
		if regular, fontErr = opentype.Parse(goregular.TTF); fontErr != nil {
			return
		}
		bold, fontErr = opentype.Parse(gobold.TTF)
	})
	return fontErr
}

func face(isBold bool, size float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	key := faceKey{bold: isBold, size: size}

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[key]; ok {
		return f, nil
	}
	src := regular
	if isBold {
		src = bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face %.0fpx: %w", size, err)
	}
	faces[key] = f
	return f, nil
}

// WritePNG rasterises the frame at the given scale. Remote avatars are not
// fetched; a neutral disc takes their place.
func WritePNG(w io.Writer, f Frame, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	b := f.Bounds
	dc := gg.NewContext(px(b.Width*scale), px(b.Height*scale))
	dc.SetColor(white)
	dc.Clear()

	dc.Scale(scale, scale)
	dc.Translate(-b.MinX, -b.MinY)

	linkColor, linkWidth := linkPen(f.LinkColor, f.LinkWidth)
	dc.SetColor(mustColor(linkColor, color.RGBA{0xcc, 0xcc, 0xcc, 0xff}))
	dc.SetLineWidth(linkWidth)
	for _, l := range f.Links {
		dc.MoveTo(l.Points[0].X, l.Points[0].Y)
		for _, pt := range l.Points[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
		dc.Stroke()
	}

	for _, n := range f.Nodes {
		if err := drawCard(dc, n); err != nil {
			return err
		}
	}
	return dc.EncodePNG(w)
}

// SavePNG rasterises the frame to path.
func SavePNG(path string, f Frame, scale float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WritePNG(file, f, scale); err != nil {
		return err
	}
	return file.Close()
}

func drawCard(dc *gg.Context, n NodeView) error {
	c := n.Card
	if c == nil {
		return nil
	}
	dc.Push()
	defer dc.Pop()
	dc.Translate(n.X, n.Y)

	dc.DrawRoundedRectangle(-c.Width/2, -c.Height/2, c.Width, c.Height, c.Radius)
	dc.SetColor(mustColor(c.Fill, white))
	dc.FillPreserve()
	dc.SetColor(mustColor(c.Stroke, black))
	dc.SetLineWidth(1)
	dc.Stroke()

	if a := c.Avatar; a.Size > 0 {
		dc.DrawCircle(a.X+a.Size/2, a.Y+a.Size/2, a.Size/2)
		dc.SetColor(avatarColor)
		dc.Fill()
	}

	for _, b := range c.Blocks() {
		ff, err := face(b.Bold, b.FontSize)
		if err != nil {
			return err
		}
		dc.SetFontFace(ff)
		dc.SetColor(mustColor(b.Color, black))
		for i, line := range b.Lines {
			dc.DrawString(line, b.X, b.Y+float64(i)*b.LineHeight)
		}
	}

	t := c.Toggle
	dc.DrawCircle(t.CX, t.CY, t.R)
	dc.SetColor(mustColor(t.Fill, white))
	dc.FillPreserve()
	dc.SetColor(mustColor(t.Stroke, black))
	dc.Stroke()
	if g := strings.TrimSpace(string(n.Glyph)); g != "" {
		ff, err := face(false, t.GlyphSize)
		if err != nil {
			return err
		}
		dc.SetFontFace(ff)
		dc.SetColor(black)
		dc.DrawStringAnchored(g, t.CX, t.GlyphY, 0.5, 0)
	}
	return nil
}
