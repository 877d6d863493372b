package render

import (
	"time"

	"github.com/vanderheijden86/orgchart/pkg/layout"
)

// Enter adds a card that was not visible before. It is created at From and
// moves to the node's own position.
type Enter struct {
	Node NodeView
	From layout.Point
}

// Move relocates a card that stays visible and refreshes its toggle glyph.
type Move struct {
	ID    string
	From  layout.Point
	To    layout.Point
	Glyph Glyph
}

// Patch is the difference between two frames, keyed by node id.
type Patch struct {
	Enter  []Enter
	Update []Move
	Exit   []string

	LinkEnter  []LinkView
	LinkUpdate []LinkView
	LinkExit   []string

	Bounds   layout.Bounds
	Duration time.Duration
}

// Empty reports whether applying the patch changes nothing but the viewport.
func (p Patch) Empty() bool {
	if len(p.Enter)+len(p.Exit)+len(p.LinkEnter)+len(p.LinkExit) > 0 {
		return false
	}
	for _, m := range p.Update {
		if m.From != m.To {
			return false
		}
	}
	return true
}

// Diff reconciles prev against next. Entering nodes start at the previous
// position of their closest ancestor that was visible in prev, or at the
// root position when prev is empty. Exiting nodes and links are removed
// without a transition.
func Diff(prev, next Frame) Patch {
	p := Patch{
		Bounds:   next.Bounds,
		Duration: next.Transition,
	}
	if p.Duration == 0 {
		p.Duration = DefaultDuration
	}

	for _, n := range next.Nodes {
		old, ok := prev.Node(n.ID)
		if !ok {
			p.Enter = append(p.Enter, Enter{Node: n, From: enterOrigin(prev, next, n)})
			continue
		}
		p.Update = append(p.Update, Move{ID: n.ID, From: old.Point(), To: n.Point(), Glyph: n.Glyph})
	}
	for _, n := range prev.Nodes {
		if _, ok := next.Node(n.ID); !ok {
			p.Exit = append(p.Exit, n.ID)
		}
	}

	prevLinks := make(map[string]bool, len(prev.Links))
	for _, l := range prev.Links {
		prevLinks[l.ID] = true
	}
	nextLinks := make(map[string]bool, len(next.Links))
	for _, l := range next.Links {
		nextLinks[l.ID] = true
		if prevLinks[l.ID] {
			p.LinkUpdate = append(p.LinkUpdate, l)
		} else {
			p.LinkEnter = append(p.LinkEnter, l)
		}
	}
	for _, l := range prev.Links {
		if !nextLinks[l.ID] {
			p.LinkExit = append(p.LinkExit, l.ID)
		}
	}
	return p
}

func enterOrigin(prev, next Frame, n NodeView) layout.Point {
	if len(next.Nodes) == 0 {
		return layout.Point{}
	}
	for id := n.ParentID; id != ""; {
		if old, ok := prev.Node(id); ok {
			return old.Point()
		}
		parent, ok := next.Node(id)
		if !ok {
			break
		}
		id = parent.ParentID
	}
	return next.Root().Point()
}
