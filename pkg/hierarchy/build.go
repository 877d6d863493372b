package hierarchy

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/orgchart/pkg/model"
)

type buildOptions struct {
	strict bool
}

// Option configures Build.
type Option func(*buildOptions)

// WithStrict rejects duplicate ids and multiple root records instead of
// recovering from them.
func WithStrict() Option {
	return func(o *buildOptions) { o.strict = true }
}

// Build links records into a tree rooted at the record with an empty parent id.
//
// Records are processed in input order. When several records have no parent the
// last one becomes the root and the others are reported as extra roots. A
// record whose parent id matches no record is dropped along with everything
// below it. When an id repeats, the last row for it supplies both the data and
// the parent link; earlier rows are ignored.
func Build(records []model.PersonRecord, opts ...Option) (*Tree, Diagnostics, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	var diag Diagnostics

	// Step 1: index the last occurrence of every id.
	last := make(map[string]int, len(records))
	count := make(map[string]int, len(records))
	for i := range records {
		rec := &records[i]
		count[rec.ID]++
		if count[rec.ID] == 2 {
			diag.Duplicates = append(diag.Duplicates, rec.ID)
		}
		last[rec.ID] = i
		if err := rec.Validate(); err != nil {
			diag.Invalid = append(diag.Invalid, rec.ID)
		}
	}
	if o.strict && len(diag.Duplicates) > 0 {
		return nil, diag, fmt.Errorf("%w: %s", ErrDuplicateID, strings.Join(diag.Duplicates, ", "))
	}

	// Step 2: single pass attaching children to parents in row order.
	childrenOf := make(map[string][]string)
	var roots []string
	orphaned := make(map[string]bool)
	for i, rec := range records {
		if last[rec.ID] != i {
			continue
		}
		if rec.IsRoot() {
			roots = append(roots, rec.ID)
			continue
		}
		if _, ok := last[rec.ParentID]; !ok {
			diag.Orphans = append(diag.Orphans, rec.ID)
			orphaned[rec.ID] = true
			continue
		}
		childrenOf[rec.ParentID] = append(childrenOf[rec.ParentID], rec.ID)
	}

	if len(roots) == 0 {
		return nil, diag, ErrMissingRoot
	}
	rootID := roots[len(roots)-1]
	diag.ExtraRoots = roots[:len(roots)-1]
	if o.strict && len(diag.ExtraRoots) > 0 {
		return nil, diag, fmt.Errorf("%w: %s", ErrMultipleRoots, strings.Join(roots, ", "))
	}

	// Step 3: lay out the reachable part in pre-order.
	t := &Tree{
		nodes: make([]Node, 0, len(last)),
		byID:  make(map[string]NodeIndex, len(last)),
	}
	var place func(id string, parent NodeIndex, depth int) NodeIndex
	place = func(id string, parent NodeIndex, depth int) NodeIndex {
		idx := NodeIndex(len(t.nodes))
		t.byID[id] = idx
		t.nodes = append(t.nodes, Node{
			Record: records[last[id]],
			Parent: parent,
			Depth:  depth,
		})
		for _, childID := range childrenOf[id] {
			if _, done := t.byID[childID]; done {
				continue
			}
			c := place(childID, idx, depth+1)
			t.nodes[idx].Children = append(t.nodes[idx].Children, c)
		}
		return idx
	}
	t.root = place(rootID, NoParent, 0)

	// Step 4: whatever is attached but was not reached hangs off an orphan,
	// an extra root, or a parent cycle.
	extra := make(map[string]bool, len(diag.ExtraRoots))
	for _, id := range diag.ExtraRoots {
		extra[id] = true
	}
	for i, rec := range records {
		if last[rec.ID] != i {
			continue
		}
		if _, ok := t.byID[rec.ID]; ok || orphaned[rec.ID] || extra[rec.ID] {
			continue
		}
		diag.Unreachable = append(diag.Unreachable, rec.ID)
	}

	return t, diag, nil
}
