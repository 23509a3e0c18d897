// Package view turns session state into the models the page templates and
// the terminal UI render.
package view

import (
	"fmt"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/editor"
	"github.com/felixgeelhaar/codelab/internal/session"
)

// Page is everything one render of the exercise page needs
type Page struct {
	SessionID string
	Header    Header
	Selector  []SelectorItem
	Exercise  *ExerciseView // nil shows the placeholder
	Editor    *EditorView
	Output    OutputView
}

// Header shows overall progress
type Header struct {
	Completed int
	Total     int
	Percent   int     // rounded for display
	Bar       float64 // unrounded width of the progress bar
}

// SelectorItem is one row of the exercise list
type SelectorItem struct {
	ID              string
	Title           string
	Difficulty      string
	DifficultyClass string
	Language        string
	Completed       bool
	Selected        bool
}

// ExerciseView renders one exercise's metadata and description
type ExerciseView struct {
	ID              string
	Title           string
	Description     string
	Difficulty      string
	DifficultyClass string
	Language        string
	ExpectedOutput  string
	Hints           []string
	Completed       bool
}

// HasHints reports whether the hints block is shown
func (e ExerciseView) HasHints() bool {
	return len(e.Hints) > 0
}

// EditorView renders the code editor and its controls
type EditorView struct {
	Language       string
	SyntaxLanguage string
	Code           string
	RunLabel       string
	RunDisabled    bool
}

// OutputState selects which output panel variant is shown
type OutputState string

const (
	OutputRunning OutputState = "running"
	OutputEmpty   OutputState = "empty"
	OutputResult  OutputState = "result"
)

// OutputView renders the output panel
type OutputView struct {
	State         OutputState
	Success       bool
	Status        string // Success or Error
	Verdict       string // Passed or Failed
	ExecutionTime string // "42ms"; empty hides the badge
	Output        string
	Error         string
	Suggestion    string
}

// Running reports the busy variant
func (o OutputView) Running() bool { return o.State == OutputRunning }

// Empty reports the no-result-yet variant
func (o OutputView) Empty() bool { return o.State == OutputEmpty }

// HasResult reports the result variant
func (o OutputView) HasResult() bool { return o.State == OutputResult }

// Build derives the page model from a session snapshot
func Build(st session.State) Page {
	p := Page{
		SessionID: st.ID.String(),
		Header: Header{
			Completed: st.Progress.Completed,
			Total:     st.Progress.Total,
			Percent:   st.Progress.Percent(),
			Bar:       st.Progress.Ratio(),
		},
		Selector: Selector(st.Exercises, st.SelectedID()),
		Output:   NewOutput(st.Result, st.Running),
	}

	if st.Selected != nil {
		ev := NewExercise(*st.Selected)
		p.Exercise = &ev

		ed := EditorView{
			Language:       st.Selected.Language,
			SyntaxLanguage: editor.SyntaxMode(st.Selected.Language),
			Code:           st.Selected.StarterCode,
		}
		if st.Editor != nil {
			ed.Language = st.Editor.Language
			ed.SyntaxLanguage = st.Editor.SyntaxLanguage
			ed.Code = st.Editor.Code
		}
		ed.RunLabel, ed.RunDisabled = editor.RunControl(st.Running)
		p.Editor = &ed
	}

	return p
}

// Selector builds the exercise list, marking selectedID
func Selector(exercises []domain.Exercise, selectedID string) []SelectorItem {
	items := make([]SelectorItem, 0, len(exercises))
	for _, ex := range exercises {
		items = append(items, SelectorItem{
			ID:              ex.ID,
			Title:           ex.Title,
			Difficulty:      string(ex.Difficulty),
			DifficultyClass: DifficultyClass(ex.Difficulty),
			Language:        ex.Language,
			Completed:       ex.Completed,
			Selected:        selectedID != "" && ex.ID == selectedID,
		})
	}
	return items
}

// NewExercise builds the exercise display model
func NewExercise(ex domain.Exercise) ExerciseView {
	hints := make([]string, len(ex.Hints))
	copy(hints, ex.Hints)
	return ExerciseView{
		ID:              ex.ID,
		Title:           ex.Title,
		Description:     ex.Description,
		Difficulty:      string(ex.Difficulty),
		DifficultyClass: DifficultyClass(ex.Difficulty),
		Language:        ex.Language,
		ExpectedOutput:  ex.ExpectedOutput,
		Hints:           hints,
		Completed:       ex.Completed,
	}
}

// NewOutput picks the output panel variant: running wins over an empty
// panel, which wins over a result.
func NewOutput(result *domain.RunResult, running bool) OutputView {
	switch {
	case running:
		return OutputView{State: OutputRunning}
	case result == nil:
		return OutputView{State: OutputEmpty}
	}

	o := OutputView{
		State:      OutputResult,
		Success:    result.Success,
		Status:     "Error",
		Verdict:    "Failed",
		Output:     result.Output,
		Error:      result.Error,
		Suggestion: result.Suggestion,
	}
	if result.Success {
		o.Status, o.Verdict = "Success", "Passed"
	}
	if o.Output == "" {
		o.Output = "No output"
	}
	if result.HasExecutionTime() {
		o.ExecutionTime = fmt.Sprintf("%dms", result.ExecutionTimeMS)
	}
	return o
}

// DifficultyClass maps a difficulty to its colour class
func DifficultyClass(d domain.Difficulty) string {
	switch d {
	case domain.DifficultyBeginner:
		return "success"
	case domain.DifficultyIntermediate:
		return "warning"
	case domain.DifficultyAdvanced:
		return "destructive"
	default:
		return "muted"
	}
}
