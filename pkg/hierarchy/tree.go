// Package hierarchy turns flat, parent-referenced person records into a single
// rooted reporting tree.
//
// Nodes live in an arena owned by the Tree and refer to each other by index,
// so parent and child links never form pointer cycles.
package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vanderheijden86/orgchart/pkg/model"
)

// NodeIndex addresses a node inside a Tree's arena.
type NodeIndex int

// NoParent is the parent index of the root.
const NoParent NodeIndex = -1

var (
	// ErrMissingRoot is returned when no record has an empty parent id.
	ErrMissingRoot = errors.New("no root record: every record has a parent_id")
	// ErrDuplicateID is returned in strict mode when an id appears more than once.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrMultipleRoots is returned in strict mode when several records have no parent.
	ErrMultipleRoots = errors.New("multiple root records")
)

// Node is one person in the tree.
type Node struct {
	Record   model.PersonRecord
	Parent   NodeIndex
	Children []NodeIndex // input row order
	Depth    int
}

// Tree is an arena of nodes reachable from a single root.
type Tree struct {
	nodes []Node
	byID  map[string]NodeIndex
	root  NodeIndex
}

// Root returns the index of the root node.
func (t *Tree) Root() NodeIndex { return t.root }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node at i.
func (t *Tree) Node(i NodeIndex) *Node { return &t.nodes[i] }

// Record returns the record of node i.
func (t *Tree) Record(i NodeIndex) model.PersonRecord { return t.nodes[i].Record }

// ID returns the record id of node i.
func (t *Tree) ID(i NodeIndex) string { return t.nodes[i].Record.ID }

// Children returns the ordered children of node i.
func (t *Tree) Children(i NodeIndex) []NodeIndex { return t.nodes[i].Children }

// Parent returns the parent of node i, or NoParent for the root.
func (t *Tree) Parent(i NodeIndex) NodeIndex { return t.nodes[i].Parent }

// Depth returns the distance of node i from the root.
func (t *Tree) Depth(i NodeIndex) int { return t.nodes[i].Depth }

// Lookup finds a node by record id.
func (t *Tree) Lookup(id string) (NodeIndex, bool) {
	i, ok := t.byID[id]
	return i, ok
}

// Walk visits nodes in pre-order starting at the root. Returning false from fn
// skips the node's descendants.
func (t *Tree) Walk(fn func(i NodeIndex) bool) {
	t.walkFrom(t.root, fn)
}

func (t *Tree) walkFrom(i NodeIndex, fn func(i NodeIndex) bool) {
	if !fn(i) {
		return
	}
	for _, c := range t.nodes[i].Children {
		t.walkFrom(c, fn)
	}
}

// Descendants returns every node below i in pre-order, excluding i.
func (t *Tree) Descendants(i NodeIndex) []NodeIndex {
	var out []NodeIndex
	t.walkFrom(i, func(n NodeIndex) bool {
		if n != i {
			out = append(out, n)
		}
		return true
	})
	return out
}

// SubtreeSize counts i and all of its descendants.
func (t *Tree) SubtreeSize(i NodeIndex) int {
	return len(t.Descendants(i)) + 1
}

// Ancestors returns the chain from the parent of i up to the root.
func (t *Tree) Ancestors(i NodeIndex) []NodeIndex {
	var out []NodeIndex
	for p := t.nodes[i].Parent; p != NoParent; p = t.nodes[p].Parent {
		out = append(out, p)
	}
	return out
}

// Diagnostics lists records that were recovered from instead of failing the build.
type Diagnostics struct {
	Orphans     []string // parent_id matches no record
	Duplicates  []string // id seen more than once; the last row wins
	ExtraRoots  []string // empty parent_id but not the chosen root
	Unreachable []string // attached somewhere, but not below the chosen root
	Invalid     []string // missing id or name
}

// Dropped is the number of records left out of the tree.
func (d Diagnostics) Dropped() int {
	return len(d.Orphans) + len(d.ExtraRoots) + len(d.Unreachable)
}

// Empty reports whether no problems were found.
func (d Diagnostics) Empty() bool {
	return d.Dropped() == 0 && len(d.Duplicates) == 0 && len(d.Invalid) == 0
}

func (d Diagnostics) String() string {
	if d.Empty() {
		return "no issues"
	}
	var parts []string
	add := func(label string, ids []string) {
		if len(ids) > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", len(ids), label))
		}
	}
	add("orphaned", d.Orphans)
	add("duplicate ids", d.Duplicates)
	add("extra roots", d.ExtraRoots)
	add("unreachable", d.Unreachable)
	add("invalid", d.Invalid)
	return strings.Join(parts, ", ")
}
