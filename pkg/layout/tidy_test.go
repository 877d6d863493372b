package layout

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
	"github.com/vanderheijden86/orgchart/pkg/model"
)

const eps = 1e-9

func rec(id, parent string) model.PersonRecord {
	return model.PersonRecord{ID: id, ParentID: parent, Name: "n" + id}
}

func expanded(t *testing.T, recs ...model.PersonRecord) collapse.Expansion {
	t.Helper()
	tree, _, err := hierarchy.Build(recs)
	require.NoError(t, err)
	return collapse.New(tree).ExpandAll()
}

func pos(t *testing.T, r Result, id string) Point {
	t.Helper()
	p, ok := r.Position(id)
	require.True(t, ok, "%s not placed", id)
	return p
}

func TestComputeSingleRoot(t *testing.T) {
	r := Compute(expanded(t, rec("A", "")), DefaultConfig())

	require.Equal(t, 1, r.Len())
	assert.Equal(t, Point{0, 0}, pos(t, r, "A"))
	assert.Empty(t, r.Links)
	assert.Equal(t, Bounds{MinX: -290, MinY: -115, Width: 680, Height: 350}, r.Bounds)
}

func TestComputeEndToEnd(t *testing.T) {
	r := Compute(expanded(t, rec("A", ""), rec("B", "A"), rec("C", "A"), rec("D", "B")), DefaultConfig())

	assert.Equal(t, Point{0, 0}, pos(t, r, "A"))
	assert.Equal(t, Point{-165, 210}, pos(t, r, "B"))
	assert.Equal(t, Point{165, 210}, pos(t, r, "C"))
	assert.Equal(t, Point{-165, 420}, pos(t, r, "D"))
	assert.Equal(t, []Link{{"A", "B"}, {"B", "D"}, {"A", "C"}}, r.Links)

	b := r.Bounds
	assert.InDelta(t, -165-290, b.MinX, eps)
	assert.InDelta(t, -115, b.MinY, eps)
	assert.InDelta(t, 165+290-(-165-290)+100, b.Width, eps)
	assert.InDelta(t, 420+75+40-(-115)+120, b.Height, eps)
}

func TestComputeCousinSeparation(t *testing.T) {
	r := Compute(expanded(t,
		rec("A", ""), rec("B", "A"), rec("C", "A"),
		rec("D", "B"), rec("E", "B"), rec("F", "C"), rec("G", "C"),
	), DefaultConfig())

	assert.InDelta(t, -660, pos(t, r, "D").X, eps)
	assert.InDelta(t, -330, pos(t, r, "E").X, eps)
	assert.InDelta(t, 330, pos(t, r, "F").X, eps)
	assert.InDelta(t, 660, pos(t, r, "G").X, eps)
	assert.InDelta(t, -495, pos(t, r, "B").X, eps)
	assert.InDelta(t, 495, pos(t, r, "C").X, eps)
}

func TestComputeRespectsCollapse(t *testing.T) {
	tree, _, err := hierarchy.Build([]model.PersonRecord{
		rec("A", ""), rec("B", "A"), rec("C", "A"), rec("D", "B"),
	})
	require.NoError(t, err)
	r := Compute(collapse.New(tree), DefaultConfig())

	assert.Equal(t, 3, r.Len())
	assert.False(t, r.Has("D"))
	p, ok := r.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, "A", p.ParentID)
	assert.Equal(t, 1, p.Depth)
}

func TestLevelsOrderedLeftToRight(t *testing.T) {
	r := Compute(expanded(t, rec("A", ""), rec("B", "A"), rec("C", "A"), rec("D", "B")), DefaultConfig())
	levels := r.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, "B", levels[1][0].ID)
	assert.Equal(t, "C", levels[1][1].ID)
}

func genShape(t *rapid.T) collapse.Expansion {
	n := rapid.IntRange(1, 60).Draw(t, "n")
	recs := []model.PersonRecord{rec("n0", "")}
	for i := 1; i < n; i++ {
		p := rapid.IntRange(0, i-1).Draw(t, "parent")
		recs = append(recs, rec("n"+strconv.Itoa(i), "n"+strconv.Itoa(p)))
	}
	tree, _, err := hierarchy.Build(recs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	e := collapse.New(tree).ExpandAll()
	for i := 0; i < tree.Len(); i++ {
		if rapid.Bool().Draw(t, "collapse") {
			e = e.CollapseSubtree(hierarchy.NodeIndex(i))
		}
	}
	return e
}

func TestComputeDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genShape(t)
		a := Compute(s, DefaultConfig())
		b := Compute(s, DefaultConfig())
		assert.Equal(t, a.Placements, b.Placements)
		assert.Equal(t, a.Bounds, b.Bounds)
	})
}

func TestComputeNoOverlapPerLevel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := DefaultConfig()
		r := Compute(genShape(t), cfg)
		for d, lvl := range r.Levels() {
			for i := 1; i < len(lvl); i++ {
				gap := lvl[i].X - lvl[i-1].X
				if gap < cfg.ColumnWidth()-eps {
					t.Fatalf("level %d: %s and %s only %.1f apart", d, lvl[i-1].ID, lvl[i].ID, gap)
				}
			}
		}
	})
}

func TestComputeCentresParents(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genShape(t)
		r := Compute(s, DefaultConfig())
		assert.InDelta(t, 0, r.Placements[0].X, eps)
		for _, p := range r.Placements {
			kids := s.VisibleChildren(p.Index)
			if len(kids) == 0 {
				continue
			}
			first, _ := r.Position(s.ID(kids[0]))
			last, _ := r.Position(s.ID(kids[len(kids)-1]))
			assert.InDelta(t, (first.X+last.X)/2, p.X, 1e-6, "parent %s", p.ID)
			assert.InDelta(t, p.Y+DefaultConfig().RowHeight(), first.Y, eps)
		}
		assert.Len(t, r.Links, r.Len()-1)
		assert.Equal(t, s.VisibleCount(), r.Len())
	})
}
