package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	GroupHeader lipgloss.Style
	Normal      lipgloss.Style
	Muted       lipgloss.Style
	Ghost       lipgloss.Style
	FocusCell   lipgloss.Style
	EditCell    lipgloss.Style
	Caret       lipgloss.Style
	Highlighted lipgloss.Style
	Confirmed   lipgloss.Style
	Suggested   lipgloss.Style
	Unset       lipgloss.Style
	Flash       lipgloss.Style
	SaveBanner  lipgloss.Style
	Overlay     lipgloss.Style
	Footer      lipgloss.Style
}

// Default is the default theme.
var Default = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	GroupHeader: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#a78bfa")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Ghost: lipgloss.NewStyle().
		Faint(true).
		Foreground(lipgloss.Color("#737373")),
	FocusCell: lipgloss.NewStyle().
		Background(lipgloss.Color("#404040")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	EditCell: lipgloss.NewStyle().
		Background(lipgloss.Color("#262626")).
		Foreground(lipgloss.Color("#fafafa")),
	Caret: lipgloss.NewStyle().
		Reverse(true),
	Highlighted: lipgloss.NewStyle().
		Background(lipgloss.Color("#7c3aed")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Confirmed: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	Suggested: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")),
	Unset: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Flash: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
	SaveBanner: lipgloss.NewStyle().
		Background(lipgloss.Color("#10b981")).
		Foreground(lipgloss.Color("#1a1a1a")).
		Bold(true).
		Padding(0, 1),
	Overlay: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#a78bfa")).
		Padding(1, 2),
	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
}
