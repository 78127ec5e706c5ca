package main

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#1976D2")
	colorSuccess = lipgloss.Color("#34D399")
	colorError   = lipgloss.Color("#F87171")
	colorDim     = lipgloss.Color("#6B7280")
)

var (
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleTableCell   = lipgloss.NewStyle().PaddingRight(2)
)
