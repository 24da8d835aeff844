package cli

import "github.com/charmbracelet/lipgloss"

var (
	StyleName    = lipgloss.NewStyle().Bold(true)
	StyleValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green - numeric
	StyleInvalid = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red - not a number
	StyleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // Gray
)
