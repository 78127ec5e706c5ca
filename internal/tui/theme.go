package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors used by the terminal counter.
type Theme struct {
	Recording lipgloss.Color
	Resting   lipgloss.Color
	Idle      lipgloss.Color
	Selected  lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color
	Notice    lipgloss.Color
}

// DefaultTheme is tuned for dark terminals.
var DefaultTheme = Theme{
	Recording: lipgloss.Color("#D32F2F"),
	Resting:   lipgloss.Color("#1976D2"),
	Idle:      lipgloss.Color("#9E9E9E"),
	Selected:  lipgloss.Color("#E8BE42"),
	Muted:     lipgloss.Color("#757575"),
	Warning:   lipgloss.Color("#FFB300"),
	Notice:    lipgloss.Color("#81C784"),
}
