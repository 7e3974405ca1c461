package main

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#667eea")).
			MarginTop(1)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86"))

	// GoodStyle, AverageStyle and PoorStyle color rate classes.
	GoodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	AverageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	PoorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)
