package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colours and styles shared by the views.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor

	Selected lipgloss.Style
}

// DefaultTheme builds the stock theme for r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#1976d2", Dark: "#64b5f6"},
		Secondary: lipgloss.AdaptiveColor{Light: "#6a1b9a", Dark: "#ce93d8"},
		Highlight: lipgloss.AdaptiveColor{Light: "#ef6c00", Dark: "#ffb74d"},
		Muted:     lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#424242", Dark: "#bdbdbd"},
		Border:    lipgloss.AdaptiveColor{Light: "#cccccc", Dark: "#555555"},
		Warning:   lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef9a9a"},
	}
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#e3f2fd", Dark: "#263238"}).
		Bold(true)
	return t
}
