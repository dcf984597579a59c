package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#50E3C2")
	muted   = lipgloss.Color("#8CA1AE")
	changed = lipgloss.Color("#FF5F5F")
	warning = lipgloss.Color("#F6AE2D")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)

	stageStyle = lipgloss.NewStyle().
			Width(18).
			Padding(0, 1)

	registerStyle = lipgloss.NewStyle().
			Width(14)

	changedStyle = registerStyle.
			Foreground(changed).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(changed)

	infoStyle = lipgloss.NewStyle().
			Foreground(warning)
)
