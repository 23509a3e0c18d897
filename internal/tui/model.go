// Package tui is the terminal front end: the same page controller as the
// browser UI, driven by Bubble Tea.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/felixgeelhaar/codelab/internal/session"
	"github.com/google/uuid"
)

// Focus selects which pane receives keys
type Focus int

const (
	FocusList Focus = iota
	FocusEditor
)

// Model is the TUI application model
type Model struct {
	ctx      context.Context
	sessions *session.Service
	id       uuid.UUID
	state    session.State

	// UI state
	focus       Focus
	cursor      int
	width       int
	height      int
	editor      textarea.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	description string
	err         error
	styles      Styles
}

// Config holds options for a new model
type Config struct {
	// ExerciseID is selected first; empty selects the first exercise
	ExerciseID string
	// Style is the glamour style name for descriptions ("dark", "light", "notty")
	Style string
}

// NewModel starts a page session on svc and builds the model around it
func NewModel(ctx context.Context, svc *session.Service, cfg Config) (Model, error) {
	st, err := svc.Create(ctx, session.CreateRequest{ExerciseID: cfg.ExerciseID})
	if err != nil {
		return Model{}, fmt.Errorf("start session: %w", err)
	}

	style := cfg.Style
	if style == "" {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(72),
	)
	if err != nil {
		return Model{}, fmt.Errorf("create markdown renderer: %w", err)
	}

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(12)

	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := Model{
		ctx:      ctx,
		sessions: svc,
		id:       st.ID,
		focus:    FocusList,
		editor:   ta,
		spinner:  sp,
		renderer: renderer,
		styles:   styles,
	}
	m.setState(st, true)
	return m, nil
}

// SessionID returns the session driven by this model
func (m Model) SessionID() uuid.UUID {
	return m.id
}

// State returns the last snapshot the model rendered
func (m Model) State() session.State {
	return m.state
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// setState adopts a snapshot. reload copies the server buffer into the
// textarea, which only happens on reset so a finishing run never clobbers
// typing. The description follows the selection.
func (m *Model) setState(st session.State, reload bool) {
	prev := m.state.SelectedID()
	m.state = st
	for i, ex := range st.Exercises {
		if ex.ID == st.SelectedID() {
			m.cursor = i
		}
	}

	if reload {
		if st.Editor != nil {
			m.editor.SetValue(st.Editor.Code)
		} else {
			m.editor.SetValue("")
		}
	}
	if reload || st.SelectedID() != prev {
		m.description = m.renderDescription()
	}
}

func (m Model) renderDescription() string {
	if m.state.Selected == nil {
		return ""
	}
	out, err := m.renderer.Render(m.state.Selected.Description)
	if err != nil {
		return m.state.Selected.Description
	}
	return out
}
