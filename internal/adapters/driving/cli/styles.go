package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Report colours. lipgloss drops them when output is not a terminal.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colourMuted)
	successStyle = lipgloss.NewStyle().Foreground(colourSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colourWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colourError)
	labelStyle   = lipgloss.NewStyle().Width(14).Foreground(colourMuted)
)

// field renders an aligned "label value" line.
func field(label, value string) string {
	return labelStyle.Render(label) + value
}
