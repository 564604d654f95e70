// Package tui is the interactive hoteladvisor front-end: a question field,
// preset shortcuts, voice capture, and a scrollable answer pane.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"}
	ColorError  = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF6B6B"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorBarBg  = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
	ColorBarFg  = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#D1D5DB"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	PresetStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	ToastStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBarBg).
			Foreground(ColorBarFg).
			Padding(0, 1)
)
