// Package layout places the visible part of the reporting tree.
//
// The placement is the tidy tree of Buchheim, Jünger and Leipert (the linear
// time variant of Walker's algorithm) in node-size mode: every unit of
// separation is one card width plus the horizontal gap and every level is one
// card height plus the vertical gap. The root sits at x = 0, y = 0.
package layout

import (
	"math"

	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
)

// Shape is the part of the tree a layout pass can see. collapse.Expansion
// implements it.
type Shape interface {
	Root() hierarchy.NodeIndex
	VisibleChildren(i hierarchy.NodeIndex) []hierarchy.NodeIndex
	ID(i hierarchy.NodeIndex) string
}

// Config holds the card size and spacing used for one pass.
type Config struct {
	NodeWidth        float64
	NodeHeight       float64
	HorizontalGap    float64
	VerticalGap      float64
	CousinSeparation float64
	Margin           float64
	ExtraWidth       float64
	ExtraHeight      float64
}

// DefaultConfig returns the spacing of the stock chart.
func DefaultConfig() Config {
	return Config{
		NodeWidth:        290,
		NodeHeight:       150,
		HorizontalGap:    40,
		VerticalGap:      60,
		CousinSeparation: 2,
		Margin:           40,
		ExtraWidth:       100,
		ExtraHeight:      120,
	}
}

// ColumnWidth is the horizontal distance of one separation unit.
func (c Config) ColumnWidth() float64 { return c.NodeWidth + c.HorizontalGap }

// RowHeight is the vertical distance between two levels.
func (c Config) RowHeight() float64 { return c.NodeHeight + c.VerticalGap }

// wnode is the per-node working record of the tidy tree walk.
type wnode struct {
	index    hierarchy.NodeIndex
	parent   *wnode
	children []*wnode
	number   int // position among siblings

	prelim   float64
	mod      float64
	change   float64
	shift    float64
	thread   *wnode
	ancestor *wnode
	defAnc   *wnode // default ancestor handed down to later siblings
	depth    int
	x        float64
}

func (v *wnode) nextLeft() *wnode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func (v *wnode) nextRight() *wnode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

type tidy struct {
	cousin float64
}

func (t tidy) separation(a, b *wnode) float64 {
	if a.parent == b.parent {
		return 1
	}
	return t.cousin
}

// grow builds the working tree of visible nodes under a synthetic parent so
// that the root can be treated like any other first child.
func grow(s Shape) (*wnode, []*wnode) {
	top := &wnode{index: hierarchy.NoParent}
	var all []*wnode
	var add func(parent *wnode, i hierarchy.NodeIndex, number, depth int) *wnode
	add = func(parent *wnode, i hierarchy.NodeIndex, number, depth int) *wnode {
		v := &wnode{index: i, parent: parent, number: number, depth: depth}
		v.ancestor = v
		all = append(all, v)
		for n, c := range s.VisibleChildren(i) {
			v.children = append(v.children, add(v, c, n, depth+1))
		}
		return v
	}
	root := add(top, s.Root(), 0, 0)
	top.children = []*wnode{root}
	return root, all
}

func (t tidy) run(root *wnode) {
	t.firstWalk(root)
	root.parent.mod = -root.prelim
	t.secondWalk(root)
}

// firstWalk assigns preliminary positions bottom-up.
func (t tidy) firstWalk(v *wnode) {
	for _, c := range v.children {
		t.firstWalk(c)
	}
	siblings := v.parent.children
	var w *wnode
	if v.number > 0 {
		w = siblings[v.number-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + t.separation(v, w)
			v.mod = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if w != nil {
		v.prelim = w.prelim + t.separation(v, w)
	}
	anc := v.parent.defAnc
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.defAnc = t.apportion(v, w, anc)
}

// secondWalk turns preliminary positions into final ones top-down.
func (t tidy) secondWalk(v *wnode) {
	v.x = v.prelim + v.parent.mod
	v.mod += v.parent.mod
	for _, c := range v.children {
		t.secondWalk(c)
	}
}

// apportion pushes the subtree of v to the right until its left contour
// clears the right contour of every earlier sibling subtree.
func (t tidy) apportion(v, w, ancestor *wnode) *wnode {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim, vom := w, v.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod
	for {
		vim = vim.nextRight()
		vip = vip.nextLeft()
		if vim == nil || vip == nil {
			break
		}
		vom = vom.nextLeft()
		vop = vop.nextRight()
		vop.ancestor = v
		shift := vim.prelim + sim - vip.prelim - sip + t.separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}
	if vim != nil && vop.nextRight() == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && vom.nextLeft() == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

func moveSubtree(wm, wp *wnode, shift float64) {
	change := shift / float64(wp.number-wm.number)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *wnode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *wnode) *wnode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}

// Compute lays out every visible node of s.
func Compute(s Shape, cfg Config) Result {
	root, all := grow(s)
	tidy{cousin: cfg.CousinSeparation}.run(root)

	res := Result{
		Placements: make([]Placement, 0, len(all)),
		byID:       make(map[string]int, len(all)),
	}
	for _, v := range all {
		p := Placement{
			ID:     s.ID(v.index),
			Index:  v.index,
			Parent: hierarchy.NoParent,
			Depth:  v.depth,
			X:      v.x * cfg.ColumnWidth(),
			Y:      float64(v.depth) * cfg.RowHeight(),
		}
		if v.parent.index != hierarchy.NoParent {
			p.Parent = v.parent.index
			p.ParentID = s.ID(v.parent.index)
			res.Links = append(res.Links, Link{Source: p.ParentID, Target: p.ID})
		}
		res.byID[p.ID] = len(res.Placements)
		res.Placements = append(res.Placements, p)
	}
	res.Bounds = bounds(res.Placements, cfg)
	return res
}

func bounds(ps []Placement, cfg Config) Bounds {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range ps {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	x0 := minX - cfg.NodeWidth
	x1 := maxX + cfg.NodeWidth
	y0 := minY - cfg.NodeHeight/2 - cfg.Margin
	y1 := maxY + cfg.NodeHeight/2 + cfg.Margin
	return Bounds{
		MinX:   x0,
		MinY:   y0,
		Width:  x1 - x0 + cfg.ExtraWidth,
		Height: y1 - y0 + cfg.ExtraHeight,
	}
}
