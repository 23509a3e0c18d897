package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/session"
)

// indent is what tab inserts in the editor
const indent = "    "

// RunFinishedMsg is sent when a run returns from the controller
type RunFinishedMsg struct {
	State session.State
	Err   error
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if w := msg.Width - listWidth - 6; w > 20 {
			m.editor.SetWidth(w)
		}
		return m, nil

	case RunFinishedMsg:
		if msg.Err == nil {
			m.err = nil
			m.setState(msg.State, false)
			return m, nil
		}
		if !errors.Is(msg.Err, domain.ErrRunInProgress) {
			m.err = msg.Err
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.state.Running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			return m.run()
		case "ctrl+x":
			return m.reset(), nil
		}
		if m.focus == FocusList {
			if msg.String() == "tab" {
				m.toggleFocus()
				return m, nil
			}
			return m.updateList(msg)
		}
		switch msg.String() {
		case "esc":
			m.toggleFocus()
			return m, nil
		case "tab":
			m.editor.InsertString(indent)
			return m, nil
		}
	}

	if m.focus != FocusEditor {
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.state.Exercises)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		return m.selectCursor(), nil
	}
	return m, nil
}

func (m *Model) toggleFocus() {
	if m.focus == FocusList {
		m.focus = FocusEditor
		m.editor.Focus()
		return
	}
	m.focus = FocusList
	m.editor.Blur()
}

func (m Model) selectCursor() Model {
	if m.cursor < 0 || m.cursor >= len(m.state.Exercises) {
		return m
	}
	if _, err := m.sessions.UpdateCode(m.ctx, m.id, m.editor.Value()); err != nil {
		m.err = err
		return m
	}
	st, err := m.sessions.Select(m.ctx, m.id, m.state.Exercises[m.cursor].ID)
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.setState(st, false)
	m.focus = FocusEditor
	m.editor.Focus()
	return m
}

func (m Model) reset() Model {
	st, err := m.sessions.Reset(m.ctx, m.id)
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.setState(st, true)
	return m
}

// run submits the editor buffer. The controller call blocks, so it runs as
// a command and reports back with RunFinishedMsg.
func (m Model) run() (tea.Model, tea.Cmd) {
	if m.state.Selected == nil || m.state.Running {
		return m, nil
	}

	code := m.editor.Value()
	m.state.Running = true

	svc, ctx, id := m.sessions, m.ctx, m.id
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			st, err := svc.Run(ctx, id, code)
			return RunFinishedMsg{State: st, Err: err}
		},
	)
}

// refresh re-reads the snapshot without touching the editor
func (m *Model) refresh() {
	if st, err := m.sessions.Get(m.ctx, m.id); err == nil {
		m.setState(st, false)
	}
}
