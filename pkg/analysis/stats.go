package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// SpanStats summarises span of control for the people reachable from a root.
type SpanStats struct {
	Root      string  `json:"root"`
	People    int     `json:"people"`
	Managers  int     `json:"managers"`
	Leaves    int     `json:"leaves"`
	MaxSpan   int     `json:"max_span"`
	MaxSpanID string  `json:"max_span_id,omitempty"`
	AvgSpan   float64 `json:"avg_span"` // over managers only
	MaxDepth  int     `json:"max_depth"`
	// PerLevel[d] is the number of people d levels below the root.
	PerLevel []int `json:"per_level"`
}

// ManagerSpan is one manager and the number of people reporting directly.
type ManagerSpan struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Reports int    `json:"reports"`
}

// Root returns the id the chart is drawn from: the last record with an empty
// parent id, or "" when there is none.
func (a *Analyzer) Root() string {
	if len(a.roots) == 0 {
		return ""
	}
	return a.roots[len(a.roots)-1]
}

// Span computes span-of-control statistics below root. Unknown roots yield
// the zero value.
func (a *Analyzer) Span(root string) SpanStats {
	start, ok := a.idToNode[root]
	if !ok {
		return SpanStats{}
	}
	st := SpanStats{Root: root}
	totalReports := 0
	bf := traverse.BreadthFirst{}
	bf.Walk(a.g, simple.Node(start), func(n graph.Node, d int) bool {
		st.People++
		for len(st.PerLevel) <= d {
			st.PerLevel = append(st.PerLevel, 0)
		}
		st.PerLevel[d]++
		if d > st.MaxDepth {
			st.MaxDepth = d
		}
		span := a.g.From(n.ID()).Len()
		if span == 0 {
			st.Leaves++
			return false
		}
		st.Managers++
		totalReports += span
		if span > st.MaxSpan {
			st.MaxSpan = span
			st.MaxSpanID = a.nodeToID[n.ID()]
		}
		return false
	})
	if st.Managers > 0 {
		st.AvgSpan = float64(totalReports) / float64(st.Managers)
	}
	return st
}

// WidestSpans returns up to limit managers ordered by number of direct
// reports, ties broken by first appearance.
func (a *Analyzer) WidestSpans(limit int) []ManagerSpan {
	var out []ManagerSpan
	for _, id := range a.order {
		n := a.g.From(a.idToNode[id]).Len()
		if n == 0 {
			continue
		}
		out = append(out, ManagerSpan{ID: id, Name: a.records[id].Name, Reports: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Reports > out[j].Reports })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
