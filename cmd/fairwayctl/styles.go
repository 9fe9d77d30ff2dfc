package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

// printStyles holds the styles used by console reports.
type printStyles struct {
	header lipgloss.Style
	strong lipgloss.Style
	good   lipgloss.Style
	fair   lipgloss.Style
	weak   lipgloss.Style
	poor   lipgloss.Style
	dim    lipgloss.Style
}

func newPrintStyles() printStyles {
	return printStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		strong: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		fair:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		weak:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		poor:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Faint(true),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// forScore picks the style of a 0-100 value.
func (s printStyles) forScore(v int) lipgloss.Style {
	switch {
	case v >= 80:
		return s.strong
	case v >= 60:
		return s.good
	case v >= 40:
		return s.fair
	case v >= 20:
		return s.weak
	default:
		return s.poor
	}
}

// renderBar draws a 0-100 value as a fixed width bar.
func (s printStyles) renderBar(v int) string {
	filled := v * barWidth / 100
	if v > 0 && filled == 0 {
		filled = 1
	}
	return s.forScore(v).Render(strings.Repeat("█", filled)) +
		s.dim.Render(strings.Repeat("░", barWidth-filled))
}
