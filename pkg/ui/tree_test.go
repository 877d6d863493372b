package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
	"github.com/vanderheijden86/orgchart/pkg/model"
)

func newTreeTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

// buildTestTree returns
//
//	1 Ada
//	├── 2 Grace
//	│   └── 4 Linus
//	└── 3 Alan
func buildTestTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tree, _, err := hierarchy.Build([]model.PersonRecord{
		{ID: "1", Name: "Ada", Title: "CEO"},
		{ID: "2", ParentID: "1", Name: "Grace", Title: "CTO"},
		{ID: "3", ParentID: "1", Name: "Alan"},
		{ID: "4", ParentID: "2", Name: "Linus", Office: "HQ", Location: "Helsinki"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tree
}

func newTestTreeModel(t *testing.T) TreeModel {
	t.Helper()
	return NewTreeModel(buildTestTree(t), config.DefaultConfig(), newTreeTestTheme())
}

func visibleNames(tm *TreeModel) []string {
	var names []string
	for _, i := range tm.flatList {
		names = append(names, tm.tree.Record(i).Name)
	}
	return names
}

func assertVisible(t *testing.T, tm *TreeModel, want ...string) {
	t.Helper()
	got := visibleNames(tm)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("visible = %v, want %v", got, want)
	}
}

func TestTreeInitialState(t *testing.T) {
	tm := newTestTreeModel(t)
	assertVisible(t, &tm, "Ada", "Grace", "Alan")
	if tm.GetSelectedID() != "1" {
		t.Errorf("selected %q, want root", tm.GetSelectedID())
	}
	two, _ := tm.tree.Lookup("2")
	if got := tm.Expansion().State(two); got != collapse.Collapsed {
		t.Errorf("Grace state = %v, want collapsed", got)
	}
}

func TestTreeToggleExpand(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.MoveDown()
	if tm.GetSelectedID() != "2" {
		t.Fatalf("selected %q, want 2", tm.GetSelectedID())
	}

	tm.ToggleExpand()
	assertVisible(t, &tm, "Ada", "Grace", "Linus", "Alan")

	tm.ToggleExpand()
	assertVisible(t, &tm, "Ada", "Grace", "Alan")
	if tm.GetSelectedID() != "2" {
		t.Errorf("cursor moved to %q after collapse", tm.GetSelectedID())
	}
}

func TestTreeToggleLeafIsNoop(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.JumpToBottom()
	if tm.GetSelectedID() != "3" {
		t.Fatalf("selected %q, want 3", tm.GetSelectedID())
	}
	before := visibleNames(&tm)
	tm.ToggleExpand()
	tm.ExpandOrMoveToChild()
	if got := visibleNames(&tm); strings.Join(got, ",") != strings.Join(before, ",") {
		t.Errorf("leaf toggle changed tree: %v", got)
	}
}

func TestTreeCollapseKeepsCursorOnAncestor(t *testing.T) {
	tm := newTestTreeModel(t)
	if !tm.Reveal("4") {
		t.Fatal("Reveal(4) failed")
	}
	if tm.GetSelectedID() != "4" {
		t.Fatalf("selected %q, want 4", tm.GetSelectedID())
	}

	tm.CollapseAll()
	if tm.GetSelectedID() != "2" {
		t.Errorf("selected %q after collapse, want hidden node's manager", tm.GetSelectedID())
	}
	assertVisible(t, &tm, "Ada", "Grace", "Alan")
}

func TestTreeArrowNavigation(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.MoveDown() // Grace

	tm.ExpandOrMoveToChild() // expands
	assertVisible(t, &tm, "Ada", "Grace", "Linus", "Alan")
	if tm.GetSelectedID() != "2" {
		t.Errorf("expand moved the cursor to %q", tm.GetSelectedID())
	}

	tm.ExpandOrMoveToChild() // moves to Linus
	if tm.GetSelectedID() != "4" {
		t.Errorf("selected %q, want first child", tm.GetSelectedID())
	}

	tm.CollapseOrJumpToParent() // leaf: jump to Grace
	if tm.GetSelectedID() != "2" {
		t.Errorf("selected %q, want parent", tm.GetSelectedID())
	}

	tm.CollapseOrJumpToParent() // expanded: collapse
	assertVisible(t, &tm, "Ada", "Grace", "Alan")

	tm.JumpToParent()
	if tm.GetSelectedID() != "1" {
		t.Errorf("selected %q, want root", tm.GetSelectedID())
	}
	tm.JumpToParent()
	if tm.GetSelectedID() != "1" {
		t.Errorf("root has no parent, cursor moved to %q", tm.GetSelectedID())
	}
}

func TestTreeMoveBounds(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.MoveUp()
	if tm.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", tm.Cursor())
	}
	for i := 0; i < 10; i++ {
		tm.MoveDown()
	}
	if tm.Cursor() != tm.NodeCount()-1 {
		t.Errorf("cursor = %d, want %d", tm.Cursor(), tm.NodeCount()-1)
	}
	tm.JumpToTop()
	if tm.Cursor() != 0 {
		t.Errorf("cursor = %d after JumpToTop", tm.Cursor())
	}
}

func TestTreeExpandAllCollapseAll(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.ExpandAll()
	assertVisible(t, &tm, "Ada", "Grace", "Linus", "Alan")
	tm.CollapseAll()
	assertVisible(t, &tm, "Ada", "Grace", "Alan")
}

func TestTreeAccordion(t *testing.T) {
	tree, _, err := hierarchy.Build([]model.PersonRecord{
		{ID: "1", Name: "Root"},
		{ID: "2", ParentID: "1", Name: "Left"},
		{ID: "3", ParentID: "1", Name: "Right"},
		{ID: "4", ParentID: "2", Name: "LeftChild"},
		{ID: "5", ParentID: "3", Name: "RightChild"},
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Server.Accordion = true
	tm := NewTreeModel(tree, cfg, newTreeTestTheme())

	tm.SelectByID("2")
	tm.ToggleExpand()
	assertVisible(t, &tm, "Root", "Left", "LeftChild", "Right")

	tm.SelectByID("3")
	tm.ToggleExpand()
	assertVisible(t, &tm, "Root", "Left", "Right", "RightChild")
}

func TestTreeRevealUnknown(t *testing.T) {
	tm := newTestTreeModel(t)
	if tm.Reveal("nope") {
		t.Error("Reveal of unknown id reported success")
	}
	if tm.SelectByID("4") {
		t.Error("SelectByID selected a hidden node")
	}
}

func TestTreeView(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.ExpandAll()
	tm.SetSize(80, 10)
	view := tm.View()

	lines := strings.Split(view, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), view)
	}
	for _, want := range []string{"Ada", "CEO", "(2)", "├── ", "└── ", "│   ", "▾", "•"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if !strings.Contains(lines[2], "Linus") {
		t.Errorf("line 3 = %q, want Linus", lines[2])
	}
}

func TestTreeViewScrolls(t *testing.T) {
	records := []model.PersonRecord{{ID: "root", Name: "Root"}}
	for i := 0; i < 30; i++ {
		records = append(records, model.PersonRecord{
			ID: fmt.Sprintf("p%d", i), ParentID: "root", Name: fmt.Sprintf("Person %02d", i),
		})
	}
	tree, _, err := hierarchy.Build(records)
	if err != nil {
		t.Fatal(err)
	}
	tm := NewTreeModel(tree, config.DefaultConfig(), newTreeTestTheme())
	tm.SetSize(60, 5)

	tm.JumpToBottom()
	view := tm.View()
	if !strings.Contains(view, "Person 29") {
		t.Errorf("bottom row not rendered:\n%s", view)
	}
	if strings.Contains(view, "Root") {
		t.Errorf("root should have scrolled out:\n%s", view)
	}
	if n := len(strings.Split(view, "\n")); n != 5 {
		t.Errorf("rendered %d rows, want 5", n)
	}

	tm.PageUp()
	if tm.Cursor() != 28 {
		t.Errorf("cursor = %d after PageUp, want 28", tm.Cursor())
	}
	tm.PageDown()
	if tm.Cursor() != 30 {
		t.Errorf("cursor = %d after PageDown, want 30", tm.Cursor())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"too long here", 5, "too …"},
		{"x", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
