package tui

import "github.com/charmbracelet/lipgloss"

var (
	baseFg    = lipgloss.Color("#E6E6E6")
	dimFg     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")

	titleStyle    = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(dimFg)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	focusBoxStyle = boxStyle.BorderForeground(accentFg)
	cursorStyle   = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	itemStyle     = lipgloss.NewStyle().Foreground(baseFg)
	labelStyle    = lipgloss.NewStyle().Foreground(baseFg).Bold(true)
	focusStyle    = lipgloss.NewStyle().Foreground(accentFg).Bold(true).Underline(true)
	welcomeStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentFg).Padding(1, 2).Width(60)
)
