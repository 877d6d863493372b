package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/orgchart/pkg/layout"
)

// WriteSVG writes the whole frame as a standalone SVG document sized to the
// frame bounds.
func WriteSVG(w io.Writer, f Frame) error {
	ew := &errWriter{w: w}
	b := f.Bounds
	canvas := svg.New(ew)
	canvas.Start(px(b.Width), px(b.Height),
		fmt.Sprintf(`viewBox="%s %s %s %s"`, num(b.MinX), num(b.MinY), num(b.Width), num(b.Height)))

	linkStyle := LinkStyle(f.LinkColor, f.LinkWidth)
	canvas.Group(`class="links"`)
	for _, l := range f.Links {
		writeLink(canvas, l, linkStyle)
	}
	canvas.Gend()

	canvas.Group(`class="nodes"`)
	for _, n := range f.Nodes {
		writeNode(canvas, n, n.X, n.Y)
	}
	canvas.Gend()

	canvas.End()
	return ew.err
}

// SaveSVG writes the frame to path.
func SaveSVG(path string, f Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteSVG(file, f); err != nil {
		return err
	}
	return file.Close()
}

// WriteNodeSVG writes a single card group placed at at. The preview page
// inserts these fragments for entering nodes.
func WriteNodeSVG(w io.Writer, n NodeView, at layout.Point) error {
	ew := &errWriter{w: w}
	writeNode(svg.New(ew), n, at.X, at.Y)
	return ew.err
}

// errWriter keeps the first write error; svgo itself ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// LinkStyle returns the svgo style string for connectors.
func LinkStyle(color string, width float64) string {
	color, width = linkPen(color, width)
	return fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s", color, num(width))
}

// linkPen fills in the connector colour and width left unset in the config.
func linkPen(color string, width float64) (string, float64) {
	if color == "" {
		color = "#ccc"
	}
	if width <= 0 {
		width = 2
	}
	return color, width
}

func writeLink(canvas *svg.SVG, l LinkView, style string) {
	canvas.Path(l.Path, style, `class="link"`, attr("data-id", l.ID))
}

func writeNode(canvas *svg.SVG, n NodeView, x, y float64) {
	canvas.Group(`class="node"`, attr("data-id", n.ID),
		attr("transform", fmt.Sprintf("translate(%s,%s)", num(x), num(y))))
	if c := n.Card; c != nil {
		canvas.Roundrect(px(-c.Width/2), px(-c.Height/2), px(c.Width), px(c.Height), px(c.Radius), px(c.Radius),
			fmt.Sprintf("fill:%s;stroke:%s", c.Fill, c.Stroke))

		a := c.Avatar
		if a.Size > 0 {
			canvas.Image(px(a.X), px(a.Y), px(a.Size), px(a.Size), html.EscapeString(a.Href),
				fmt.Sprintf(`clip-path="circle(%spx at center)"`, num(a.Size/2)))
		}

		for _, b := range c.Blocks() {
			writeBlock(canvas, b, c.Font)
		}

		t := c.Toggle
		canvas.Circle(px(t.CX), px(t.CY), px(t.R),
			fmt.Sprintf("fill:%s;stroke:%s;cursor:pointer", t.Fill, t.Stroke), `class="toggle-btn"`)
		canvas.Text(px(t.CX), px(t.GlyphY), string(n.Glyph),
			fmt.Sprintf("font-size:%spx;text-anchor:middle;pointer-events:none", num(t.GlyphSize)),
			`class="toggle-icon"`)
	}
	canvas.Gend()
}

func writeBlock(canvas *svg.SVG, b TextBlock, font string) {
	if len(b.Lines) == 0 {
		return
	}
	weight := "normal"
	if b.Bold {
		weight = "bold"
	}
	canvas.Textspan(px(b.X), px(b.Y), "",
		fmt.Sprintf("font-family:%s;font-size:%spx;fill:%s;font-weight:%s", font, num(b.FontSize), b.Color, weight))
	for i, line := range b.Lines {
		dy := "0"
		if i > 0 {
			dy = num(b.LineHeight)
		}
		canvas.Span(line, attr("x", num(b.X)), attr("dy", dy))
	}
	canvas.TextEnd()
}

func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func px(f float64) int {
	return int(math.Round(f))
}
