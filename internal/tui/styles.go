package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Badge       lipgloss.Style
	BadgeOff    lipgloss.Style
	Dim         lipgloss.Style
	Folder      lipgloss.Style
	Selected    lipgloss.Style
	EmptyTitle  lipgloss.Style
	EmptyIcon   lipgloss.Style
	TintedIcon  lipgloss.Style
	Notice      lipgloss.Style
	Filter      lipgloss.Style
	Help        lipgloss.Style
	GridCell    lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Badge:       lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1),
		BadgeOff:    lipgloss.NewStyle().Faint(true).Padding(0, 1),
		Dim:         lipgloss.NewStyle().Faint(true),
		Folder:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		Selected:    lipgloss.NewStyle().Background(lipgloss.Color("237")),
		EmptyTitle:  lipgloss.NewStyle().Bold(true).MarginTop(1),
		EmptyIcon:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		TintedIcon:  lipgloss.NewStyle().Foreground(lipgloss.Color("99")),
		Notice:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")).MarginTop(1),
		Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Help:        lipgloss.NewStyle().Faint(true).MarginTop(1),
		GridCell:    lipgloss.NewStyle().Width(24).MaxWidth(24),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// icons maps empty-state icon identifiers to terminal glyphs.
var icons = map[string]string{
	"folder":  "[ ]",
	"search":  "(?)",
	"star":    "(*)",
	"recent":  "(~)",
	"shared":  "(<)",
	"image":   "[#]",
	"sync":    "(@)",
	"filter":  "(=)",
	"offline": "(!)",
}

func iconGlyph(id string) string {
	if g, ok := icons[id]; ok {
		return g
	}
	return "( )"
}
