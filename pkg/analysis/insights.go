package analysis

import (
	"fmt"
	"sort"
)

// Feature states reported in FeatureStatus.State.
const (
	StateAvailable = "available"
	StateSkipped   = "skipped"
)

// FeatureStatus tracks computation state for one section of the insights.
type FeatureStatus struct {
	State   string `json:"state"`
	Reason  string `json:"reason,omitempty"`
	Capped  bool   `json:"capped,omitempty"`
	Count   int    `json:"count,omitempty"`
	Limited int    `json:"limited,omitempty"` // count before capping
}

// InsightsConfig caps the size of each section.
type InsightsConfig struct {
	ConnectorLimit  int
	SpanLimit       int
	CycleBreakLimit int
	// SampleSize bounds betweenness pivots; 0 picks RecommendSampleSize.
	SampleSize int
	Seed       int64
}

// DefaultInsightsConfig returns the caps used by the report command.
func DefaultInsightsConfig() InsightsConfig {
	return InsightsConfig{
		ConnectorLimit:  5,
		SpanLimit:       5,
		CycleBreakLimit: 10,
		Seed:            1,
	}
}

// Insights is the data-quality and structure report for a record set.
type Insights struct {
	Root        string            `json:"root"`
	Roots       []string          `json:"roots"`
	Span        SpanStats         `json:"span"`
	WidestSpans []ManagerSpan     `json:"widest_spans,omitempty"`
	Orphans     []Orphan          `json:"orphans,omitempty"`
	Unreachable []string          `json:"unreachable,omitempty"`
	Connectors  ConnectorResult   `json:"connectors"`
	CycleBreak  CycleBreakResult  `json:"cycle_break"`
	UsageHints  map[string]string `json:"usage_hints"`
}

// Orphan is a record whose parent id matches no record. Such people never
// appear in the chart.
type Orphan struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	ParentID string `json:"parent_id"`
}

// Connector is a person many reporting paths run through.
type Connector struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Score float64 `json:"score"`
}

// ConnectorResult ranks people by betweenness.
type ConnectorResult struct {
	Status FeatureStatus   `json:"status"`
	Mode   BetweennessMode `json:"mode,omitempty"`
	Items  []Connector     `json:"items,omitempty"`
}

// CycleBreakResult lists reporting loops and the line to cut in each.
type CycleBreakResult struct {
	Status      FeatureStatus    `json:"status"`
	Suggestions []CycleBreakItem `json:"suggestions,omitempty"`
	CycleCount  int              `json:"cycle_count"`
	Advisory    string           `json:"advisory"`
}

// CycleBreakItem names the reporting line to reassign.
type CycleBreakItem struct {
	Cycle      []string `json:"cycle"`
	ID         string   `json:"id"`
	ParentID   string   `json:"parent_id"`
	Collateral int      `json:"collateral"` // reports outside the loop that become reachable
	Rationale  string   `json:"rationale"`
}

// DefaultUsageHints returns short guidance for each section.
func DefaultUsageHints() map[string]string {
	return map[string]string{
		"orphans":     "Parent id matches no record. Fix the parent_id column or these people stay hidden.",
		"unreachable": "Not below the root. Usually caused by orphans or reporting loops.",
		"connectors":  "People most reporting paths run through. Collapsing them hides the most of the chart.",
		"span":        "Direct reports per manager. Very wide spans make the chart wide.",
		"cycle_break": "Reporting loops. Point the suggested parent_id at someone below the root.",
	}
}

// Insights computes the full report.
func (a *Analyzer) Insights(cfg InsightsConfig) *Insights {
	root := a.Root()
	in := &Insights{
		Root:        root,
		Roots:       a.roots,
		Span:        a.Span(root),
		WidestSpans: a.WidestSpans(cfg.SpanLimit),
		Orphans:     a.Orphans(),
		UsageHints:  DefaultUsageHints(),
	}
	if root != "" {
		in.Unreachable = a.Unreachable(root)
	} else {
		in.Unreachable = append([]string(nil), a.order...)
	}
	in.Connectors = a.Connectors(cfg)
	in.CycleBreak = a.CycleBreaks(cfg.CycleBreakLimit)
	return in
}

// Orphans returns records whose non-empty parent id is unknown, in first-seen
// order.
func (a *Analyzer) Orphans() []Orphan {
	var out []Orphan
	for _, id := range a.order {
		r := a.records[id]
		if r.IsRoot() {
			continue
		}
		if _, ok := a.idToNode[r.ParentID]; !ok {
			out = append(out, Orphan{ID: id, Name: r.Name, ParentID: r.ParentID})
		}
	}
	return out
}

// Connectors ranks people by betweenness, dropping those with a zero score.
func (a *Analyzer) Connectors(cfg InsightsConfig) ConnectorResult {
	if a.NodeCount() == 0 {
		return ConnectorResult{Status: FeatureStatus{State: StateSkipped, Reason: "no records"}}
	}
	sample := cfg.SampleSize
	if sample <= 0 {
		sample = RecommendSampleSize(a.NodeCount())
	}
	bc := a.Betweenness(sample, cfg.Seed)
	items := make([]Connector, 0, len(bc.Scores))
	for id, s := range bc.Scores {
		if s <= 0 {
			continue
		}
		items = append(items, Connector{ID: id, Name: a.records[id].Name, Score: s})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return a.idToNode[items[i].ID] < a.idToNode[items[j].ID]
	})
	res := ConnectorResult{
		Status: FeatureStatus{State: StateAvailable, Limited: len(items)},
		Mode:   bc.Mode,
	}
	if cfg.ConnectorLimit > 0 && len(items) > cfg.ConnectorLimit {
		items = items[:cfg.ConnectorLimit]
		res.Status.Capped = true
	}
	res.Items = items
	res.Status.Count = len(items)
	return res
}

// CycleBreaks suggests, for each reporting loop, the member whose parent id
// should change: the member with the most reports outside the loop.
func (a *Analyzer) CycleBreaks(limit int) CycleBreakResult {
	cycles := a.Cycles()
	if len(cycles) == 0 {
		return CycleBreakResult{
			Status:   FeatureStatus{State: StateAvailable},
			Advisory: "No reporting loops detected.",
		}
	}
	suggestions := make([]CycleBreakItem, 0, len(cycles))
	for _, cycle := range cycles {
		members := make(map[string]bool, len(cycle))
		for _, id := range cycle {
			members[id] = true
		}
		best, bestOut := cycle[0], -1
		for _, id := range cycle {
			out := 0
			for _, r := range a.Reports(id) {
				if !members[r] {
					out++
				}
			}
			if out > bestOut {
				best, bestOut = id, out
			}
		}
		suggestions = append(suggestions, CycleBreakItem{
			Cycle:      cycle,
			ID:         best,
			ParentID:   a.records[best].ParentID,
			Collateral: bestOut,
			Rationale:  rationale(len(cycle), bestOut),
		})
	}

	res := CycleBreakResult{
		Status:     FeatureStatus{State: StateAvailable, Limited: len(suggestions)},
		CycleCount: len(cycles),
		Advisory:   "People in a reporting loop are not shown in the chart.",
	}
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
		res.Status.Capped = true
	}
	res.Suggestions = suggestions
	res.Status.Count = len(suggestions)
	return res
}

func rationale(size, outside int) string {
	if size == 1 {
		return "Record names itself as parent."
	}
	if outside == 0 {
		return fmt.Sprintf("Loop of %d with no reports outside it.", size)
	}
	return fmt.Sprintf("Loop of %d; this person has %d reports outside the loop.", size, outside)
}
