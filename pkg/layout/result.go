package layout

import (
	"cmp"
	"slices"

	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
)

// Point is a position in chart coordinates.
type Point struct {
	X, Y float64
}

// Placement is where one visible node ends up after a pass.
type Placement struct {
	ID       string
	Index    hierarchy.NodeIndex
	Parent   hierarchy.NodeIndex // NoParent for the root
	ParentID string
	Depth    int
	X, Y     float64
}

// Point returns the placement's position.
func (p Placement) Point() Point { return Point{X: p.X, Y: p.Y} }

// Link connects a visible parent to a visible child. Links are identified by
// their target.
type Link struct {
	Source string
	Target string
}

// Bounds is the viewport that encloses every card plus padding.
type Bounds struct {
	MinX, MinY    float64
	Width, Height float64
}

// ViewBox returns the bounds in SVG viewBox order.
func (b Bounds) ViewBox() [4]float64 {
	return [4]float64{b.MinX, b.MinY, b.Width, b.Height}
}

// Result is the outcome of one layout pass.
type Result struct {
	// Placements are in pre-order of the visible tree.
	Placements []Placement
	Links      []Link
	Bounds     Bounds

	byID map[string]int
}

// Len returns the number of placed nodes.
func (r Result) Len() int { return len(r.Placements) }

// Lookup returns the placement of id.
func (r Result) Lookup(id string) (Placement, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Placement{}, false
	}
	return r.Placements[i], true
}

// Position returns the position of id.
func (r Result) Position(id string) (Point, bool) {
	p, ok := r.Lookup(id)
	return p.Point(), ok
}

// Has reports whether id was placed.
func (r Result) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Levels groups placements by depth, each level ordered left to right.
func (r Result) Levels() [][]Placement {
	var levels [][]Placement
	for _, p := range r.Placements {
		for len(levels) <= p.Depth {
			levels = append(levels, nil)
		}
		levels[p.Depth] = append(levels[p.Depth], p)
	}
	for _, lvl := range levels {
		slices.SortStableFunc(lvl, func(a, b Placement) int { return cmp.Compare(a.X, b.X) })
	}
	return levels
}
