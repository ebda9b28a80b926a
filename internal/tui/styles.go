package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	colorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	colorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}

	styleTitle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleStage   = lipgloss.NewStyle().Foreground(colorInfo)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleLink    = lipgloss.NewStyle().Foreground(colorInfo).Underline(true)
	styleBox     = lipgloss.NewStyle().Padding(1, 2)

	iconPending   = "○"
	iconCompleted = "✔"
	iconError     = "✘"
)
