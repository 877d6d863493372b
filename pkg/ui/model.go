package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
	"github.com/vanderheijden86/orgchart/pkg/model"
)

// SplitViewThreshold is the terminal width above which the detail pane is
// shown next to the tree.
const SplitViewThreshold = 100

// copyFunc writes to the system clipboard; tests replace it.
var copyFunc = clipboard.WriteAll

// Model is the bubbletea model of the terminal org chart browser.
type Model struct {
	tree     TreeModel
	records  *hierarchy.Tree
	fields   []config.FieldStyle
	theme    Theme
	viewport viewport.Model
	renderer *glamour.TermRenderer

	searchInput textinput.Model
	searching   bool
	matches     []hierarchy.Match
	matchIdx    int

	status      string
	width       int
	height      int
	isSplitView bool
	ready       bool
}

// NewModel creates the browser for tree.
func NewModel(tree *hierarchy.Tree, cfg config.Config, theme Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "name, title or office"
	ti.Prompt = "/"
	ti.CharLimit = 64
	ti.Width = 30

	return Model{
		tree:        NewTreeModel(tree, cfg, theme),
		records:     tree,
		fields:      cfg.Card.Fields,
		theme:       theme,
		searchInput: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Tree returns the tree view.
func (m Model) Tree() *TreeModel { return &m.tree }

// Status returns the current status line message.
func (m Model) Status() string { return m.status }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.isSplitView = msg.Width > SplitViewThreshold
		m.layout()
		m.ready = true
		m.updateDetail()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		m.tree.MoveDown()
	case "k", "up":
		m.tree.MoveUp()
	case "l", "right":
		m.tree.ExpandOrMoveToChild()
	case "h", "left":
		m.tree.CollapseOrJumpToParent()
	case "enter", " ":
		m.tree.ToggleExpand()
	case "E":
		m.tree.ExpandAll()
	case "C":
		m.tree.CollapseAll()
	case "g", "home":
		m.tree.JumpToTop()
	case "G", "end":
		m.tree.JumpToBottom()
	case "p":
		m.tree.JumpToParent()
	case "ctrl+d", "pgdown":
		m.tree.PageDown()
	case "ctrl+u", "pgup":
		m.tree.PageUp()
	case "/":
		m.searching = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, textinput.Blink
	case "n":
		m.nextMatch(1)
	case "N":
		m.nextMatch(-1)
	case "y":
		m.copySelected()
	}
	m.updateDetail()
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.matches = m.records.Search(m.searchInput.Value())
		m.matchIdx = -1
		if len(m.matches) == 0 {
			m.status = fmt.Sprintf("no match for %q", m.searchInput.Value())
			return m, nil
		}
		m.nextMatch(1)
		m.updateDetail()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// nextMatch reveals the next (dir 1) or previous (dir -1) search hit.
func (m *Model) nextMatch(dir int) {
	if len(m.matches) == 0 {
		return
	}
	n := len(m.matches)
	m.matchIdx = ((m.matchIdx+dir)%n + n) % n
	id := m.records.ID(m.matches[m.matchIdx].Index)
	m.tree.Reveal(id)
	m.status = fmt.Sprintf("match %d/%d", m.matchIdx+1, n)
}

func (m *Model) copySelected() {
	rec, ok := m.tree.SelectedRecord()
	if !ok {
		return
	}
	if err := copyFunc(PersonLine(rec)); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + rec.Name
}

// PersonLine is the one-line summary copied to the clipboard.
func PersonLine(rec model.PersonRecord) string {
	parts := []string{rec.Name}
	if rec.Title != "" {
		parts = append(parts, rec.Title)
	}
	if o := rec.OfficeLine(); o != "" {
		parts = append(parts, o)
	}
	return strings.Join(parts, ", ")
}

func (m *Model) layout() {
	treeHeight := m.height - 1 // status line
	if treeHeight < 1 {
		treeHeight = 1
	}
	if !m.isSplitView {
		m.tree.SetSize(m.width, treeHeight)
		return
	}
	treeWidth := m.width * 3 / 5
	detailWidth := m.width - treeWidth - 3
	m.tree.SetSize(treeWidth, treeHeight)
	m.viewport = viewport.New(detailWidth, treeHeight-2) // -2 for border
	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(detailWidth-4),
	)
}

func (m *Model) updateDetail() {
	if !m.isSplitView || !m.ready {
		return
	}
	rec, ok := m.tree.SelectedRecord()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	md := DetailMarkdown(rec, m.fields)
	if m.renderer != nil {
		if out, err := m.renderer.Render(md); err == nil {
			md = out
		}
	}
	m.viewport.SetContent(md)
}

// DetailMarkdown describes a person the way their card does.
func DetailMarkdown(rec model.PersonRecord, fields []config.FieldStyle) string {
	var sb strings.Builder
	sb.WriteString("## " + rec.Name + "\n\n")
	for _, f := range fields {
		if v := f.Format(rec.Field(f.Column)); v != "" {
			if f.Column == model.ColTitle {
				sb.WriteString("*" + v + "*\n\n")
			} else {
				sb.WriteString("- " + v + "\n")
			}
		}
	}
	if rec.Projects != "" {
		sb.WriteString("\n**Projects:** " + rec.Projects + "\n")
	}
	if o := rec.OfficeLine(); o != "" {
		sb.WriteString("\n" + o + "\n")
	}
	sb.WriteString("\n`" + rec.ID + "`\n")
	return sb.String()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	body := m.tree.View()
	if m.isSplitView {
		border := m.theme.Renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.Border)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.theme.Renderer.NewStyle().Width(m.tree.width).Render(body),
			" ",
			border.Render(m.viewport.View()),
		)
	}
	return body + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	if m.searching {
		return m.searchInput.View()
	}
	muted := m.theme.Renderer.NewStyle().Foreground(m.theme.Muted)
	if m.status != "" {
		return m.theme.Renderer.NewStyle().Foreground(m.theme.Highlight).Render(m.status)
	}
	return muted.Render(fmt.Sprintf("%d shown · ↑↓ move · ←→ collapse/expand · / search · y copy · E/C all · q quit",
		m.tree.NodeCount()))
}

// Run starts the browser on the terminal.
func Run(tree *hierarchy.Tree, cfg config.Config) error {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	p := tea.NewProgram(NewModel(tree, cfg, theme), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
