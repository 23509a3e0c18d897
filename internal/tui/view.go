package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/codelab/internal/view"
)

const (
	listWidth = 28
	barWidth  = 20
)

// View renders the model
func (m Model) View() string {
	page := view.Build(m.state)

	left := m.renderSelector(page)
	right := m.renderWorkspace(page)

	var b strings.Builder
	b.WriteString(m.renderHeader(page.Header))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader(h view.Header) string {
	filled := int(h.Bar * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	bar := m.styles.BarFilled.Render(strings.Repeat("█", filled)) +
		m.styles.BarEmpty.Render(strings.Repeat("░", barWidth-filled))

	return fmt.Sprintf("%s  %d/%d %s %d%%",
		m.styles.Title.Render("CodeLab"),
		h.Completed, h.Total, bar, h.Percent)
}

func (m Model) renderSelector(page view.Page) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Exercises"))
	b.WriteString("\n")

	for i, item := range page.Selector {
		cursor := "  "
		if m.focus == FocusList && i == m.cursor {
			cursor = "> "
		}

		mark := m.styles.Muted.Render("○")
		if item.Completed {
			mark = m.styles.Done.Render("✓")
		}

		title := item.Title
		if item.Selected {
			title = m.styles.Selected.Render(title)
		}

		fmt.Fprintf(&b, "%s%s %s\n   %s\n", cursor, mark, title,
			m.styles.difficulty(item.DifficultyClass).Render(item.Difficulty))
	}

	panel := m.styles.Panel
	if m.focus == FocusList {
		panel = m.styles.FocusPanel
	}
	return panel.Width(listWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderWorkspace(page view.Page) string {
	if page.Exercise == nil {
		return m.styles.Panel.Render(m.styles.Title.Render("Select an Exercise") + "\n" +
			m.styles.Muted.Render("Choose an exercise from the list to get started."))
	}

	sections := []string{
		m.renderExercise(*page.Exercise),
		m.renderEditor(page.Editor),
		m.renderOutput(page.Output),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderExercise(ex view.ExerciseView) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(ex.Title))
	b.WriteString("  ")
	b.WriteString(m.styles.difficulty(ex.DifficultyClass).Render(ex.Difficulty))
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render(ex.Language))
	if ex.Completed {
		b.WriteString("  " + m.styles.Done.Render("✓ Completed"))
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(m.description))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("Expected output:"))
	b.WriteString("\n")
	b.WriteString(ex.ExpectedOutput)

	if ex.HasHints() {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render("Hints:"))
		for i, hint := range ex.Hints {
			fmt.Fprintf(&b, "\n %d. %s", i+1, hint)
		}
	}
	return m.styles.Panel.Render(b.String())
}

func (m Model) renderEditor(ed *view.EditorView) string {
	if ed == nil {
		return ""
	}

	label := ed.RunLabel
	if ed.RunDisabled {
		label = m.spinner.View() + " " + label
	}
	title := fmt.Sprintf("%s  %s  [%s]",
		m.styles.Title.Render("Code Editor"),
		m.styles.Muted.Render(ed.Language),
		label)

	panel := m.styles.Panel
	if m.focus == FocusEditor {
		panel = m.styles.FocusPanel
	}
	return panel.Render(title + "\n" + m.editor.View())
}

func (m Model) renderOutput(o view.OutputView) string {
	switch {
	case o.Running():
		return m.styles.Panel.Render(m.spinner.View() + " Running Code...\n" +
			m.styles.Muted.Render("Executing your code, please wait..."))
	case o.Empty():
		return m.styles.Panel.Render("○ Output\n" +
			m.styles.Muted.Render("Run your code to see the output here."))
	}

	status := m.styles.Error.Render("✗ " + o.Status)
	if o.Success {
		status = m.styles.Success.Render("✓ " + o.Status)
	}

	var b strings.Builder
	b.WriteString(status)
	if o.ExecutionTime != "" {
		b.WriteString("  " + m.styles.Muted.Render(o.ExecutionTime))
	}
	b.WriteString("  " + o.Verdict)
	b.WriteString("\n\n")
	b.WriteString(o.Output)
	if o.Error != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Error.Render(o.Error))
	}
	if o.Suggestion != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Suggestion.Render("Suggestion: " + o.Suggestion))
	}
	return m.styles.Panel.Render(b.String())
}

func (m Model) renderHelp() string {
	keys := "ctrl+r: run • ctrl+x: reset • ctrl+c: quit"
	if m.focus == FocusList {
		keys = "↑/↓: move • enter: select • tab: editor • " + keys
	} else {
		keys = "esc: exercise list • tab: indent • " + keys
	}
	return m.styles.Help.Render(keys)
}
