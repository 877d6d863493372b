// tree.go - terminal tree view over the chart's collapse state
package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
	"github.com/vanderheijden86/orgchart/pkg/model"
)

// TreeModel manages the hierarchical tree view. Expand and collapse go
// through the same collapse.Expansion the chart uses, so the terminal and
// the rendered chart follow the same rules.
type TreeModel struct {
	tree      *hierarchy.Tree
	expansion collapse.Expansion
	policy    collapse.Policy
	flatList  []hierarchy.NodeIndex // visible nodes in pre-order
	cursor    int
	theme     Theme
	card      config.CardLayout

	width          int
	height         int
	viewportOffset int // index of the first rendered node
}

// NewTreeModel creates a tree view in the chart's initial state: the root
// expanded and everything below its children collapsed.
func NewTreeModel(tree *hierarchy.Tree, cfg config.Config, theme Theme) TreeModel {
	t := TreeModel{
		tree:      tree,
		expansion: collapse.New(tree),
		policy:    collapse.Policy{Accordion: cfg.Server.Accordion},
		theme:     theme,
		card:      cfg.Card,
	}
	t.rebuildFlatList()
	return t
}

// SetSize updates the available dimensions for the tree view.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Expansion returns the current collapse state.
func (t *TreeModel) Expansion() collapse.Expansion { return t.expansion }

// View renders the visible window of the tree.
func (t *TreeModel) View() string {
	if len(t.flatList) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		line := t.renderNode(t.flatList[i])
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (t *TreeModel) renderEmptyState() string {
	r := t.theme.Renderer
	titleStyle := r.NewStyle().Foreground(t.theme.Primary).Bold(true)
	mutedStyle := r.NewStyle().Foreground(t.theme.Muted)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Org Chart"))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("No people to display."))
	return sb.String()
}

// renderNode renders one row: branch prefix, expand indicator, name, title
// and direct report count.
func (t *TreeModel) renderNode(i hierarchy.NodeIndex) string {
	rec := t.tree.Record(i)
	r := t.theme.Renderer
	var sb strings.Builder

	prefix := t.buildTreePrefix(i)
	sb.WriteString(prefix)

	indicatorStyle := r.NewStyle().Foreground(t.theme.Secondary)
	sb.WriteString(indicatorStyle.Render(t.getExpandIndicator(i)))
	sb.WriteString(" ")

	nameStyle := r.NewStyle().Bold(true)
	name := rec.Name
	if name == "" {
		name = rec.ID
	}

	rest := ""
	if rec.Title != "" {
		rest = " · " + rec.Title
	}
	if n := len(t.tree.Children(i)); n > 0 {
		rest += " (" + strconv.Itoa(n) + ")"
	}

	avail := t.width - lipgloss.Width(prefix) - 2
	if t.width <= 0 {
		avail = 80
	}
	if avail < 10 {
		avail = 10
	}
	name = truncate(name, avail)
	sb.WriteString(nameStyle.Render(name))
	if rest != "" {
		mutedStyle := r.NewStyle().Foreground(t.theme.Muted)
		sb.WriteString(mutedStyle.Render(truncate(rest, avail-lipgloss.Width(name))))
	}
	return sb.String()
}

// buildTreePrefix builds the indentation and branch characters for a node.
func (t *TreeModel) buildTreePrefix(i hierarchy.NodeIndex) string {
	if t.tree.Depth(i) == 0 {
		return ""
	}

	var parts []string
	// ancestors from the root's child down to the parent
	anc := t.tree.Ancestors(i)
	for k := len(anc) - 2; k >= 0; k-- {
		if t.hasSiblingsBelow(anc[k]) {
			parts = append(parts, "│   ")
		} else {
			parts = append(parts, "    ")
		}
	}
	if t.hasSiblingsBelow(i) {
		parts = append(parts, "├── ")
	} else {
		parts = append(parts, "└── ")
	}

	treeStyle := t.theme.Renderer.NewStyle().Foreground(t.theme.Muted)
	return treeStyle.Render(strings.Join(parts, ""))
}

// hasSiblingsBelow reports whether i has a later sibling.
func (t *TreeModel) hasSiblingsBelow(i hierarchy.NodeIndex) bool {
	p := t.tree.Parent(i)
	if p == hierarchy.NoParent {
		return false
	}
	kids := t.tree.Children(p)
	return len(kids) > 0 && kids[len(kids)-1] != i
}

// getExpandIndicator returns the expand/collapse indicator for a node.
func (t *TreeModel) getExpandIndicator(i hierarchy.NodeIndex) string {
	switch t.expansion.State(i) {
	case collapse.Expanded:
		return "▾"
	case collapse.Collapsed:
		return "▸"
	default:
		return "•"
	}
}

// SelectedIndex returns the selected node, false when the tree is empty.
func (t *TreeModel) SelectedIndex() (hierarchy.NodeIndex, bool) {
	if t.cursor < 0 || t.cursor >= len(t.flatList) {
		return 0, false
	}
	return t.flatList[t.cursor], true
}

// SelectedRecord returns the selected person.
func (t *TreeModel) SelectedRecord() (model.PersonRecord, bool) {
	i, ok := t.SelectedIndex()
	if !ok {
		return model.PersonRecord{}, false
	}
	return t.tree.Record(i), true
}

// GetSelectedID returns the id of the selected person or "".
func (t *TreeModel) GetSelectedID() string {
	if r, ok := t.SelectedRecord(); ok {
		return r.ID
	}
	return ""
}

// MoveDown moves the cursor down in the flat list.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.flatList)-1 {
		t.cursor++
	}
	t.ensureCursorVisible()
}

// MoveUp moves the cursor up in the flat list.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
	t.ensureCursorVisible()
}

// ToggleExpand expands or collapses the selected node.
func (t *TreeModel) ToggleExpand() {
	i, ok := t.SelectedIndex()
	if !ok || t.expansion.State(i) == collapse.Leaf {
		return
	}
	t.setExpansion(t.expansion.ToggleWith(i, t.policy))
}

// ExpandAll expands every node.
func (t *TreeModel) ExpandAll() {
	t.setExpansion(t.expansion.ExpandAll())
}

// CollapseAll collapses everything below the root's children, as on start.
func (t *TreeModel) CollapseAll() {
	t.setExpansion(t.expansion.ExpandToDepth(1))
}

// JumpToTop moves the cursor to the root.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last visible node.
func (t *TreeModel) JumpToBottom() {
	if len(t.flatList) > 0 {
		t.cursor = len(t.flatList) - 1
	}
	t.ensureCursorVisible()
}

// JumpToParent moves the cursor to the selected node's manager.
func (t *TreeModel) JumpToParent() {
	i, ok := t.SelectedIndex()
	if !ok {
		return
	}
	if p := t.tree.Parent(i); p != hierarchy.NoParent {
		t.selectIndex(p)
	}
}

// ExpandOrMoveToChild expands a collapsed node or moves to the first child
// of an expanded one. Leaves do nothing.
func (t *TreeModel) ExpandOrMoveToChild() {
	i, ok := t.SelectedIndex()
	if !ok {
		return
	}
	switch t.expansion.State(i) {
	case collapse.Collapsed:
		t.setExpansion(t.expansion.ToggleWith(i, t.policy))
	case collapse.Expanded:
		t.selectIndex(t.tree.Children(i)[0])
	}
}

// CollapseOrJumpToParent collapses an expanded node, otherwise moves to the
// parent.
func (t *TreeModel) CollapseOrJumpToParent() {
	i, ok := t.SelectedIndex()
	if !ok {
		return
	}
	if t.expansion.State(i) == collapse.Expanded {
		t.setExpansion(t.expansion.Toggle(i))
		return
	}
	t.JumpToParent()
}

// PageDown moves the cursor down by half a viewport.
func (t *TreeModel) PageDown() {
	t.cursor += t.pageSize()
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// PageUp moves the cursor up by half a viewport.
func (t *TreeModel) PageUp() {
	t.cursor -= t.pageSize()
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

func (t *TreeModel) pageSize() int {
	if n := t.height / 2; n >= 1 {
		return n
	}
	return 5
}

// Reveal expands the path to id and selects it.
func (t *TreeModel) Reveal(id string) bool {
	i, ok := t.tree.Lookup(id)
	if !ok {
		return false
	}
	t.setExpansion(t.expansion.ExpandPath(i))
	t.selectIndex(i)
	return true
}

// SelectByID selects id if it is visible.
func (t *TreeModel) SelectByID(id string) bool {
	i, ok := t.tree.Lookup(id)
	if !ok {
		return false
	}
	return t.selectIndex(i)
}

func (t *TreeModel) selectIndex(i hierarchy.NodeIndex) bool {
	for k, n := range t.flatList {
		if n == i {
			t.cursor = k
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// setExpansion swaps in e and keeps the cursor on the same person, or on
// their closest visible ancestor when they were hidden.
func (t *TreeModel) setExpansion(e collapse.Expansion) {
	sel, ok := t.SelectedIndex()
	t.expansion = e
	t.rebuildFlatList()
	if !ok {
		return
	}
	for !t.expansion.IsVisible(sel) {
		sel = t.tree.Parent(sel)
	}
	t.selectIndex(sel)
}

func (t *TreeModel) rebuildFlatList() {
	t.flatList = t.expansion.Visible()
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// visibleRange returns the [start, end) slice of flatList to render.
func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.flatList) == 0 {
		return 0, 0
	}
	visibleCount := t.height
	if visibleCount <= 0 {
		visibleCount = 20
	}
	start = t.viewportOffset
	if start > len(t.flatList)-1 {
		start = len(t.flatList) - 1
	}
	if start < 0 {
		start = 0
	}
	end = start + visibleCount
	if end > len(t.flatList) {
		end = len(t.flatList)
	}
	return start, end
}

// ensureCursorVisible scrolls so the cursor row is rendered.
func (t *TreeModel) ensureCursorVisible() {
	visibleCount := t.height
	if visibleCount <= 0 {
		visibleCount = 20
	}
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+visibleCount {
		t.viewportOffset = t.cursor - visibleCount + 1
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// NodeCount returns the number of visible nodes.
func (t *TreeModel) NodeCount() int { return len(t.flatList) }

// Cursor returns the selected row.
func (t *TreeModel) Cursor() int { return t.cursor }

func truncate(s string, maxLen int) string {
	if maxLen <= 1 {
		return "…"
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
