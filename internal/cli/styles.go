// Package cli renders engine results for the terminal and runs the
// interactive analytics menu.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	PrimaryColor = lipgloss.Color("#1F3A5F")
	AccentColor  = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	RuleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	LabelStyle = lipgloss.NewStyle().
			Width(30)

	ValueStyle = lipgloss.NewStyle().
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	PromptStyle = lipgloss.NewStyle().
			Bold(true)
)

const ruleWidth = 60

func rule(char string) string {
	return RuleStyle.Render(strings.Repeat(char, ruleWidth))
}
