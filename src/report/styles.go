// Package report renders end-of-run summaries for the terminal.
package report

import "github.com/charmbracelet/lipgloss"

// StyleConfig holds the summary palette.
type StyleConfig struct {
	PrimaryBlue   lipgloss.Color
	TextSecondary lipgloss.Color
	BorderColor   lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Failure       lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:   lipgloss.Color("#8AB4F8"),
		TextSecondary: lipgloss.Color("#9AA0A6"),
		BorderColor:   lipgloss.Color("#5F6368"),
		Success:       lipgloss.Color("#34A853"),
		Warning:       lipgloss.Color("#FBBC04"),
		Failure:       lipgloss.Color("#EA4335"),
	}
}

// TitleStyle returns the heading style for an outcome.
func (s *StyleConfig) TitleStyle(ok bool) lipgloss.Style {
	color := s.Success
	if !ok {
		color = s.Failure
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true)
}

// LabelStyle returns the style for row labels.
func (s *StyleConfig) LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Width(labelWidth)
}

// BoxStyle returns the container style.
func (s *StyleConfig) BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.BorderColor)
}
