package cmd

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5c542"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8c42"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7bd389"))
)
