package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Base styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8")).
				Italic(true)

	caretStyle = lipgloss.NewStyle().
			Reverse(true)

	selectionStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240"))

	// Tag chips
	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12"))

	tagOpenStyle = tagStyle.
			Background(lipgloss.Color("5")).
			Bold(true)

	tagCaretStyle = tagStyle.
			Reverse(true)

	// Dropdown and filter menu
	candidateStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedCandidateStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(lipgloss.Color("240")).
				Bold(true)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	menuTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	// Result grid
	columnWidth = 12

	headerCellStyle = lipgloss.NewStyle().
			Width(columnWidth).
			Align(lipgloss.Right).
			Foreground(lipgloss.Color("6")).
			Bold(true)

	valueCellStyle = lipgloss.NewStyle().
			Width(columnWidth).
			Align(lipgloss.Right).
			Foreground(lipgloss.Color("2"))

	errorCellStyle = valueCellStyle.
			Foreground(lipgloss.Color("1")).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)
