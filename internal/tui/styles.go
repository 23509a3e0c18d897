package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the view
type Styles struct {
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Done       lipgloss.Style
	Panel      lipgloss.Style
	FocusPanel lipgloss.Style
	Success    lipgloss.Style
	Error      lipgloss.Style
	Suggestion lipgloss.Style
	Spinner    lipgloss.Style
	Help       lipgloss.Style
	BarFilled  lipgloss.Style
	BarEmpty   lipgloss.Style
	Difficulty map[string]lipgloss.Style
}

// DefaultStyles returns the default colour scheme
func DefaultStyles() Styles {
	green := lipgloss.Color("42")
	yellow := lipgloss.Color("214")
	red := lipgloss.Color("196")
	gray := lipgloss.Color("245")
	accent := lipgloss.Color("63")

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(gray).
		Padding(0, 1)

	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		Muted:      lipgloss.NewStyle().Foreground(gray),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Done:       lipgloss.NewStyle().Foreground(green),
		Panel:      panel,
		FocusPanel: panel.BorderForeground(accent),
		Success:    lipgloss.NewStyle().Bold(true).Foreground(green),
		Error:      lipgloss.NewStyle().Bold(true).Foreground(red),
		Suggestion: lipgloss.NewStyle().Italic(true).Foreground(yellow),
		Spinner:    lipgloss.NewStyle().Foreground(accent),
		Help:       lipgloss.NewStyle().Foreground(gray),
		BarFilled:  lipgloss.NewStyle().Foreground(green),
		BarEmpty:   lipgloss.NewStyle().Foreground(gray),
		Difficulty: map[string]lipgloss.Style{
			"success":     lipgloss.NewStyle().Foreground(green),
			"warning":     lipgloss.NewStyle().Foreground(yellow),
			"destructive": lipgloss.NewStyle().Foreground(red),
			"muted":       lipgloss.NewStyle().Foreground(gray),
		},
	}
}

// difficulty returns the style for a colour class
func (s Styles) difficulty(class string) lipgloss.Style {
	if st, ok := s.Difficulty[class]; ok {
		return st
	}
	return s.Muted
}
