package hierarchy

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is one search hit.
type Match struct {
	Index    NodeIndex
	Distance int // Levenshtein distance of the query to the matched text
}

// searchText is what a query is matched against: name, title and office.
func searchText(t *Tree, i NodeIndex) string {
	r := t.Record(i)
	return strings.Join([]string{r.Name, r.Title, r.OfficeLine()}, " ")
}

// Search fuzzy-matches query against every person's name, title and office,
// case and diacritic insensitive. Exact id matches come first, then hits
// ordered by distance and tree order. An empty query matches nothing.
func (t *Tree) Search(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	targets := make([]string, len(t.nodes))
	for i := range t.nodes {
		targets[i] = searchText(t, NodeIndex(i))
	}

	var out []Match
	exact, hasExact := t.Lookup(query)
	if hasExact {
		out = append(out, Match{Index: exact})
	}
	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	for _, r := range ranks {
		idx := NodeIndex(r.OriginalIndex)
		if hasExact && idx == exact {
			continue
		}
		out = append(out, Match{Index: idx, Distance: r.Distance})
	}
	return out
}
