package render

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
	"github.com/vanderheijden86/orgchart/pkg/layout"
)

// DefaultDuration is the transition applied to every move.
const DefaultDuration = 300 * time.Millisecond

// NodeView is one visible card in a frame.
type NodeView struct {
	ID       string
	ParentID string
	Depth    int
	X, Y     float64
	Glyph    Glyph
	Card     *Card
}

// Point returns the node position.
func (n NodeView) Point() layout.Point { return layout.Point{X: n.X, Y: n.Y} }

// LinkView is the connector drawn above a visible child. Its ID is the
// child's id.
type LinkView struct {
	ID     string
	Source string
	Path   string
	Points [4]layout.Point // the elbow's corners, parent end first
}

// Frame is everything needed to draw one state of the chart.
type Frame struct {
	Nodes      []NodeView // pre-order
	Links      []LinkView
	Bounds     layout.Bounds
	Transition time.Duration
	LinkColor  string
	LinkWidth  float64

	index map[string]int
}

// Len returns the number of visible nodes.
func (f Frame) Len() int { return len(f.Nodes) }

// Node returns the view of id.
func (f Frame) Node(id string) (NodeView, bool) {
	i, ok := f.index[id]
	if !ok {
		return NodeView{}, false
	}
	return f.Nodes[i], true
}

// Root returns the root view. It panics on an empty frame.
func (f Frame) Root() NodeView { return f.Nodes[0] }

// Elbow returns the orthogonal connector from a parent centred at (px, py) to
// a child centred at (cx, cy) for cards of height h: down from the parent's
// bottom edge to the midpoint, across to the child, down to its top edge.
func Elbow(px, py, cx, cy, h float64) string {
	pts := ElbowPoints(px, py, cx, cy, h)
	return fmt.Sprintf("M%s,%s V%s H%s V%s",
		num(pts[0].X), num(pts[0].Y), num(pts[1].Y), num(pts[2].X), num(pts[3].Y))
}

// ElbowPoints returns the corners of the connector Elbow describes.
func ElbowPoints(px, py, cx, cy, h float64) [4]layout.Point {
	midY := (py + cy) / 2
	return [4]layout.Point{
		{X: px, Y: py + h/2},
		{X: px, Y: midY},
		{X: cx, Y: midY},
		{X: cx, Y: cy - h/2},
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Renderer builds frames for one data set. Cards are built up front so a
// Renderer is read-only afterwards and may be shared between sessions.
type Renderer struct {
	card       config.CardLayout
	palette    config.Palette
	transition time.Duration
	cards      map[string]*Card
}

// NewRenderer builds the card of every node in tree.
func NewRenderer(tree *hierarchy.Tree, cfg config.Config) *Renderer {
	r := &Renderer{
		card:       cfg.Card,
		palette:    cfg.Palette,
		transition: cfg.Server.Transition,
		cards:      make(map[string]*Card, tree.Len()),
	}
	if r.transition == 0 {
		r.transition = DefaultDuration
	}
	tree.Walk(func(i hierarchy.NodeIndex) bool {
		r.cards[tree.ID(i)] = BuildCard(tree.Record(i), cfg.Card, cfg.Palette)
		return true
	})
	return r
}

// Card returns the prebuilt card of id.
func (r *Renderer) Card(id string) (*Card, bool) {
	c, ok := r.cards[id]
	return c, ok
}

// CardLayout returns the card geometry in use.
func (r *Renderer) CardLayout() config.CardLayout { return r.card }

// Palette returns the colour table in use.
func (r *Renderer) Palette() config.Palette { return r.palette }

// Frame combines a layout pass with the expansion it was computed from.
func (r *Renderer) Frame(exp collapse.Expansion, res layout.Result) Frame {
	f := Frame{
		Nodes:      make([]NodeView, 0, res.Len()),
		Links:      make([]LinkView, 0, len(res.Links)),
		Bounds:     res.Bounds,
		Transition: r.transition,
		LinkColor:  r.card.LinkColor,
		LinkWidth:  r.card.LinkWidth,
		index:      make(map[string]int, res.Len()),
	}
	for _, p := range res.Placements {
		f.index[p.ID] = len(f.Nodes)
		f.Nodes = append(f.Nodes, NodeView{
			ID:       p.ID,
			ParentID: p.ParentID,
			Depth:    p.Depth,
			X:        p.X,
			Y:        p.Y,
			Glyph:    GlyphFor(exp.State(p.Index)),
			Card:     r.cards[p.ID],
		})
	}
	for _, l := range res.Links {
		src, _ := res.Position(l.Source)
		dst, _ := res.Position(l.Target)
		f.Links = append(f.Links, LinkView{
			ID:     l.Target,
			Source: l.Source,
			Path:   Elbow(src.X, src.Y, dst.X, dst.Y, r.card.Height),
			Points: ElbowPoints(src.X, src.Y, dst.X, dst.Y, r.card.Height),
		})
	}
	return f
}
