package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/model"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(buildTestTree(t), config.DefaultConfig(), newTreeTestTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, string(r))
	}
	return m
}

func TestModelNotReadyBeforeSize(t *testing.T) {
	m := NewModel(buildTestTree(t), config.DefaultConfig(), newTreeTestTheme())
	if m.View() != "Loading..." {
		t.Errorf("View() = %q before the first WindowSizeMsg", m.View())
	}
}

func TestModelKeyNavigation(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "j", "enter")
	if got := m.Tree().NodeCount(); got != 4 {
		t.Errorf("NodeCount = %d after expanding Grace, want 4", got)
	}
	m = press(t, m, "l")
	if got := m.Tree().GetSelectedID(); got != "4" {
		t.Errorf("selected %q, want 4", got)
	}
	m = press(t, m, "p")
	if got := m.Tree().GetSelectedID(); got != "2" {
		t.Errorf("selected %q after p, want 2", got)
	}
	m = press(t, m, "C")
	if got := m.Tree().NodeCount(); got != 3 {
		t.Errorf("NodeCount = %d after C, want 3", got)
	}
	m = press(t, m, "E", "G")
	if got := m.Tree().GetSelectedID(); got != "3" {
		t.Errorf("selected %q after G, want 3", got)
	}
	m = press(t, m, "g")
	if got := m.Tree().GetSelectedID(); got != "1" {
		t.Errorf("selected %q after g, want 1", got)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModelSearchRevealsMatch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "linus")
	m = press(t, m, "enter")

	if got := m.Tree().GetSelectedID(); got != "4" {
		t.Fatalf("selected %q, want the hidden match revealed", got)
	}
	if !strings.Contains(m.Status(), "match 1/1") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestModelSearchCyclesMatches(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "a")
	m = press(t, m, "enter")
	if len(m.matches) < 2 {
		t.Fatalf("expected several matches for %q, got %d", "a", len(m.matches))
	}
	first := m.Tree().GetSelectedID()
	m = press(t, m, "n")
	if m.Tree().GetSelectedID() == first {
		t.Error("n did not move to the next match")
	}
	m = press(t, m, "N")
	if got := m.Tree().GetSelectedID(); got != first {
		t.Errorf("N went to %q, want %q", got, first)
	}
}

func TestModelSearchNoMatch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "zzz")
	m = press(t, m, "enter")
	if !strings.Contains(m.Status(), "no match") {
		t.Errorf("status = %q", m.Status())
	}
	if got := m.Tree().GetSelectedID(); got != "1" {
		t.Errorf("cursor moved to %q", got)
	}
}

func TestModelSearchEscCancels(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "linus")
	m = press(t, m, "esc")
	if m.searching {
		t.Error("still searching after esc")
	}
	// j navigates again instead of typing
	m = press(t, m, "j")
	if got := m.Tree().GetSelectedID(); got != "2" {
		t.Errorf("selected %q, want 2", got)
	}
}

func TestModelCopy(t *testing.T) {
	var copied string
	orig := copyFunc
	copyFunc = func(s string) error { copied = s; return nil }
	defer func() { copyFunc = orig }()

	m := newTestModel(t)
	m = press(t, m, "y")
	if copied != "Ada, CEO" {
		t.Errorf("copied %q", copied)
	}
	if m.Status() != "copied Ada" {
		t.Errorf("status = %q", m.Status())
	}

	copyFunc = func(string) error { return errors.New("no clipboard") }
	m = press(t, m, "y")
	if !strings.Contains(m.Status(), "no clipboard") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestModelSplitView(t *testing.T) {
	m := NewModel(buildTestTree(t), config.DefaultConfig(), newTreeTestTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 30})
	m = updated.(Model)
	if !m.isSplitView {
		t.Fatal("expected split view above the threshold")
	}
	if !strings.Contains(m.View(), "Ada") {
		t.Error("split view lost the tree")
	}

	updated, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	if updated.(Model).isSplitView {
		t.Error("split view kept below the threshold")
	}
}

func TestPersonLine(t *testing.T) {
	tests := []struct {
		rec  model.PersonRecord
		want string
	}{
		{model.PersonRecord{Name: "Ada"}, "Ada"},
		{model.PersonRecord{Name: "Ada", Title: "CEO"}, "Ada, CEO"},
		{model.PersonRecord{Name: "Linus", Office: "HQ", Location: "Helsinki"}, "Linus, HQ Helsinki"},
	}
	for _, tt := range tests {
		if got := PersonLine(tt.rec); got != tt.want {
			t.Errorf("PersonLine(%+v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
}

func TestDetailMarkdown(t *testing.T) {
	rec := model.PersonRecord{
		ID: "4", Name: "Linus", Title: "Maintainer",
		Office: "HQ", Location: "Helsinki", Projects: "kernel",
	}
	md := DetailMarkdown(rec, config.DefaultFields())
	for _, want := range []string{"## Linus", "*Maintainer*", "**Projects:** kernel", "HQ Helsinki", "`4`"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
