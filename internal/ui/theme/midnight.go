package theme

import "github.com/charmbracelet/lipgloss"

// Midnight theme - deep indigo night with violet accents
var Midnight = Theme{
	Name: "midnight",

	Background: lipgloss.Color("#1E1B4B"), // Indigo night
	Foreground: lipgloss.Color("#F8FAFC"),
	Subtle:     lipgloss.Color("#8B5CF6"),
	Highlight:  lipgloss.Color("#4C1D95"),
	Border:     lipgloss.Color("#7C3AED"),

	Primary:   lipgloss.Color("#C084FC"), // Light violet
	Secondary: lipgloss.Color("#A855F7"), // Purple
	Info:      lipgloss.Color("#A855F7"),

	Success: lipgloss.Color("#C084FC"),
	Warning: lipgloss.Color("#F0ABFC"), // Orchid
	Error:   lipgloss.Color("#EC4899"), // Pink
}
