package ui

import "github.com/charmbracelet/lipgloss"

// Colors shared by the dashboard cards.
var (
	Blue   = lipgloss.Color("#3B82F6") // Line and bars
	Green  = lipgloss.Color("#22C55E") // Improvements
	Muted  = lipgloss.Color("#94A3B8") // Labels and hints
	Text   = lipgloss.Color("#E2E8F0") // Values
	Border = lipgloss.Color("#334155")
	Red    = lipgloss.Color("#EF4444") // Stream state
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(Text)
	labelStyle = lipgloss.NewStyle().Foreground(Muted)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(Text)
	goodStyle  = lipgloss.NewStyle().Bold(true).Foreground(Green)
	lineStyle  = lipgloss.NewStyle().Foreground(Blue)
	alertStyle = lipgloss.NewStyle().Foreground(Red)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1).
			Width(cardWidth)
)
