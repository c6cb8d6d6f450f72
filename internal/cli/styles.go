package cli

import "github.com/charmbracelet/lipgloss"

var (
	styleTimer  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true)
)
