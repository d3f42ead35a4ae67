package view

import "github.com/charmbracelet/lipgloss"

// Theme colors
var (
	cBorder  = lipgloss.Color("#874BFD")
	cMuted   = lipgloss.Color("#8AA0B6")
	cText    = lipgloss.Color("#D6E2F0")
	cAccent  = lipgloss.Color("#7EE787") // green-ish
	cAccent2 = lipgloss.Color("#79C0FF") // blue-ish
	cWarn    = lipgloss.Color("#FFA657") // orange
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(cBorder).
			Padding(0, 1).
			Width(cardWidth)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(cBorder).
			Padding(1, 2)

	labelStyle  = lipgloss.NewStyle().Foreground(cMuted)
	textStyle   = lipgloss.NewStyle().Foreground(cText)
	accentStyle = lipgloss.NewStyle().Foreground(cAccent).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(cWarn)
	barOnStyle  = lipgloss.NewStyle().Foreground(cAccent)
	barOffStyle = lipgloss.NewStyle().Foreground(cMuted)
)

const (
	cardWidth   = 44
	barWidth    = 24
	gridColumns = 3
)
