// Package analysis inspects the reporting graph independently of the tree the
// chart draws: cycles in reporting lines, who is reachable from the root,
// span of control and the people most reporting paths run through.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/vanderheijden86/orgchart/pkg/model"
)

// Analyzer holds the manager -> report graph of a record set. Every record
// with a resolvable parent id contributes one edge; for duplicate ids the
// last row wins, as in the chart.
type Analyzer struct {
	g        *simple.DirectedGraph
	idToNode map[string]int64
	nodeToID map[int64]string
	records  map[string]model.PersonRecord
	order    []string // ids in first-seen order
	selfRefs []string // records that name themselves as parent
	roots    []string
}

// NewAnalyzer builds the reporting graph.
func NewAnalyzer(records []model.PersonRecord) *Analyzer {
	a := &Analyzer{
		g:        simple.NewDirectedGraph(),
		idToNode: make(map[string]int64),
		nodeToID: make(map[int64]string),
		records:  make(map[string]model.PersonRecord),
	}
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, seen := a.idToNode[r.ID]; !seen {
			id := int64(len(a.order))
			a.idToNode[r.ID] = id
			a.nodeToID[id] = r.ID
			a.order = append(a.order, r.ID)
			a.g.AddNode(simple.Node(id))
		}
		a.records[r.ID] = r
	}
	for _, id := range a.order {
		r := a.records[id]
		switch {
		case r.IsRoot():
			a.roots = append(a.roots, id)
		case r.ParentID == r.ID:
			a.selfRefs = append(a.selfRefs, id)
		default:
			if p, ok := a.idToNode[r.ParentID]; ok {
				a.g.SetEdge(a.g.NewEdge(simple.Node(p), simple.Node(a.idToNode[id])))
			}
		}
	}
	return a
}

// NodeCount returns the number of distinct ids.
func (a *Analyzer) NodeCount() int { return len(a.order) }

// EdgeCount returns the number of resolvable reporting lines.
func (a *Analyzer) EdgeCount() int { return a.g.Edges().Len() }

// Roots returns the ids with an empty parent id in first-seen order.
func (a *Analyzer) Roots() []string { return a.roots }

// Cycles returns every group of people whose reporting lines loop back on
// themselves. Members and groups are in first-seen order. A record naming
// itself as parent is a cycle of one.
func (a *Analyzer) Cycles() [][]string {
	var cycles [][]string
	for _, scc := range topo.TarjanSCC(a.g) {
		if len(scc) < 2 {
			continue
		}
		cycles = append(cycles, a.ids(scc))
	}
	for _, id := range a.selfRefs {
		cycles = append(cycles, []string{id})
	}
	sort.Slice(cycles, func(i, j int) bool {
		return a.idToNode[cycles[i][0]] < a.idToNode[cycles[j][0]]
	})
	return cycles
}

// Reachable returns the ids reachable from root following reporting lines,
// root included. Unknown roots yield nil.
func (a *Analyzer) Reachable(root string) map[string]bool {
	start, ok := a.idToNode[root]
	if !ok {
		return nil
	}
	seen := map[string]bool{root: true}
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) { seen[a.nodeToID[n.ID()]] = true },
	}
	bf.Walk(a.g, simple.Node(start), nil)
	return seen
}

// Unreachable returns the ids not reachable from root, in first-seen order.
func (a *Analyzer) Unreachable(root string) []string {
	seen := a.Reachable(root)
	var out []string
	for _, id := range a.order {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Reports returns the direct reports of id in first-seen order.
func (a *Analyzer) Reports(id string) []string {
	n, ok := a.idToNode[id]
	if !ok {
		return nil
	}
	return a.ids(graph.NodesOf(a.g.From(n)))
}

// Record returns the last record seen for id.
func (a *Analyzer) Record(id string) (model.PersonRecord, bool) {
	r, ok := a.records[id]
	return r, ok
}

// ids maps graph nodes back to record ids, sorted by first appearance.
func (a *Analyzer) ids(nodes []graph.Node) []string {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = a.nodeToID[n.ID()]
	}
	return out
}
