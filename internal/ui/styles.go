package ui

import "github.com/charmbracelet/lipgloss"

var (
	labelStyle = lipgloss.NewStyle().
			Width(6).
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})

	movingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#0A7F5A", Dark: "#14FFA1"})
)

// Card styles, indexed by cardLayer.
var cardStyles = [...]lipgloss.Style{
	layerNone: lipgloss.NewStyle(),
	layerBack: lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#444444"}),
	layerFront: lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}),
	layerActive: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#0050A0", Dark: "#00AEFF"}),
}
