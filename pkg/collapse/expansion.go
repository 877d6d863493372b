// Package collapse tracks which parts of the reporting tree are expanded.
//
// An Expansion is a value: every mutating operation returns a new Expansion and
// leaves the receiver untouched. Collapsing never removes children from the
// tree, it only hides them, so expanding again restores the exact subtree.
package collapse

import (
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
)

// State is the expand/collapse state of a single node.
type State int

const (
	Leaf      State = iota // no children at all
	Expanded               // children visible
	Collapsed              // children retained but hidden
)

func (s State) String() string {
	switch s {
	case Expanded:
		return "expanded"
	case Collapsed:
		return "collapsed"
	default:
		return "leaf"
	}
}

// Policy tunes Toggle.
type Policy struct {
	// Accordion collapses every sibling subtree of the toggled node first, so at
	// most one branch per parent stays open.
	Accordion bool
}

// Expansion is the collapse flag of every node in a tree.
type Expansion struct {
	tree      *hierarchy.Tree
	collapsed []bool
}

// New returns the initial state: the root expanded and every other node that
// has children collapsed.
func New(tree *hierarchy.Tree) Expansion {
	e := Expansion{tree: tree, collapsed: make([]bool, tree.Len())}
	for _, c := range tree.Children(tree.Root()) {
		e.collapseSubtree(c)
	}
	return e
}

// Tree returns the underlying tree.
func (e Expansion) Tree() *hierarchy.Tree { return e.tree }

// Root returns the root index.
func (e Expansion) Root() hierarchy.NodeIndex { return e.tree.Root() }

// ID returns the record id of node i.
func (e Expansion) ID(i hierarchy.NodeIndex) string { return e.tree.ID(i) }

// State returns the state of node i.
func (e Expansion) State(i hierarchy.NodeIndex) State {
	if len(e.tree.Children(i)) == 0 {
		return Leaf
	}
	if e.collapsed[i] {
		return Collapsed
	}
	return Expanded
}

// VisibleChildren returns the children of i that are currently shown.
func (e Expansion) VisibleChildren(i hierarchy.NodeIndex) []hierarchy.NodeIndex {
	if e.collapsed[i] {
		return nil
	}
	return e.tree.Children(i)
}

// HiddenChildren returns the children of i held back while it is collapsed.
func (e Expansion) HiddenChildren(i hierarchy.NodeIndex) []hierarchy.NodeIndex {
	if !e.collapsed[i] {
		return nil
	}
	return e.tree.Children(i)
}

// Visible returns the visible nodes in pre-order.
func (e Expansion) Visible() []hierarchy.NodeIndex {
	out := make([]hierarchy.NodeIndex, 0, e.tree.Len())
	var visit func(i hierarchy.NodeIndex)
	visit = func(i hierarchy.NodeIndex) {
		out = append(out, i)
		for _, c := range e.VisibleChildren(i) {
			visit(c)
		}
	}
	visit(e.tree.Root())
	return out
}

// VisibleCount returns the number of visible nodes.
func (e Expansion) VisibleCount() int {
	return len(e.Visible())
}

// IsVisible reports whether every ancestor of i is expanded.
func (e Expansion) IsVisible(i hierarchy.NodeIndex) bool {
	for _, a := range e.tree.Ancestors(i) {
		if e.collapsed[a] {
			return false
		}
	}
	return true
}

// CollapseSubtree collapses i and every descendant that has children.
// Applying it twice is the same as applying it once.
func (e Expansion) CollapseSubtree(i hierarchy.NodeIndex) Expansion {
	next := e.clone()
	next.collapseSubtree(i)
	return next
}

// Toggle flips node i: an expanded node collapses together with its whole
// subtree, a collapsed node shows its direct children again and a leaf is left
// as is.
func (e Expansion) Toggle(i hierarchy.NodeIndex) Expansion {
	return e.ToggleWith(i, Policy{})
}

// ToggleWith is Toggle under a policy.
func (e Expansion) ToggleWith(i hierarchy.NodeIndex, p Policy) Expansion {
	next := e.clone()
	if p.Accordion {
		if parent := e.tree.Parent(i); parent != hierarchy.NoParent {
			for _, sib := range e.tree.Children(parent) {
				if sib != i {
					next.collapseSubtree(sib)
				}
			}
		}
	}
	switch next.State(i) {
	case Expanded:
		next.collapseSubtree(i)
	case Collapsed:
		next.collapsed[i] = false
	}
	return next
}

// ExpandAll shows every node.
func (e Expansion) ExpandAll() Expansion {
	return Expansion{tree: e.tree, collapsed: make([]bool, e.tree.Len())}
}

// ExpandToDepth shows every node down to depth d (the root is depth 0) and
// collapses the nodes at depth d and below.
func (e Expansion) ExpandToDepth(d int) Expansion {
	next := e.ExpandAll()
	for i := range next.collapsed {
		idx := hierarchy.NodeIndex(i)
		if e.tree.Depth(idx) >= d && len(e.tree.Children(idx)) > 0 {
			next.collapsed[i] = true
		}
	}
	return next
}

// ExpandPath expands every ancestor of i so that i becomes visible.
func (e Expansion) ExpandPath(i hierarchy.NodeIndex) Expansion {
	next := e.clone()
	for _, a := range e.tree.Ancestors(i) {
		next.collapsed[a] = false
	}
	return next
}

func (e Expansion) collapseSubtree(i hierarchy.NodeIndex) {
	if len(e.tree.Children(i)) > 0 {
		e.collapsed[i] = true
	}
	for _, c := range e.tree.Children(i) {
		e.collapseSubtree(c)
	}
}

func (e Expansion) clone() Expansion {
	c := make([]bool, len(e.collapsed))
	copy(c, e.collapsed)
	return Expansion{tree: e.tree, collapsed: c}
}
