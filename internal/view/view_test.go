package view

import (
	"testing"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/session"
	"github.com/google/uuid"
)

func sampleState() session.State {
	exercises := []domain.Exercise{
		{ID: "a", Title: "A", Difficulty: domain.DifficultyBeginner, Language: "Python", StarterCode: "# a", Completed: true, Hints: []string{"h1", "h2"}},
		{ID: "b", Title: "B", Difficulty: domain.DifficultyIntermediate, Language: "Python", StarterCode: "# b"},
		{ID: "c", Title: "C", Difficulty: domain.DifficultyAdvanced, Language: "JavaScript"},
	}
	selected := exercises[1]
	return session.State{
		ID:        uuid.New(),
		Exercises: exercises,
		Selected:  &selected,
		Editor:    &session.EditorState{Language: "Python", SyntaxLanguage: "python", Code: "print(1)"},
		Progress:  domain.ProgressOf(exercises),
	}
}

func TestNewOutput_Priority(t *testing.T) {
	result := &domain.RunResult{Success: true, Output: "x"}

	tests := []struct {
		name    string
		result  *domain.RunResult
		running bool
		want    OutputState
	}{
		{"running beats result", result, true, OutputRunning},
		{"running without result", nil, true, OutputRunning},
		{"empty", nil, false, OutputEmpty},
		{"result", result, false, OutputResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewOutput(tt.result, tt.running).State; got != tt.want {
				t.Errorf("State = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewOutput_Result(t *testing.T) {
	o := NewOutput(&domain.RunResult{Success: true, Output: "Hello, World!", ExecutionTimeMS: 42}, false)
	if o.Status != "Success" || o.Verdict != "Passed" {
		t.Errorf("Status/Verdict = %q/%q", o.Status, o.Verdict)
	}
	if o.ExecutionTime != "42ms" {
		t.Errorf("ExecutionTime = %q, want 42ms", o.ExecutionTime)
	}
	if o.Error != "" || o.Suggestion != "" {
		t.Error("success should carry no error blocks")
	}

	o = NewOutput(&domain.RunResult{Success: false, Error: "E", Suggestion: "S"}, false)
	if o.Status != "Error" || o.Verdict != "Failed" {
		t.Errorf("Status/Verdict = %q/%q", o.Status, o.Verdict)
	}
	if o.Output != "No output" {
		t.Errorf("Output = %q, want No output", o.Output)
	}
	if o.ExecutionTime != "" {
		t.Error("zero elapsed time hides the badge")
	}
}

func TestBuild(t *testing.T) {
	st := sampleState()
	p := Build(st)

	if p.SessionID != st.ID.String() {
		t.Errorf("SessionID = %q", p.SessionID)
	}
	if p.Header.Completed != 1 || p.Header.Total != 3 || p.Header.Percent != 33 {
		t.Errorf("Header = %+v", p.Header)
	}
	if p.Header.Bar < 33.3 || p.Header.Bar > 33.4 {
		t.Errorf("Header.Bar = %v, want unrounded 33.33", p.Header.Bar)
	}

	if len(p.Selector) != 3 {
		t.Fatalf("len(Selector) = %d", len(p.Selector))
	}
	if p.Selector[0].Selected || !p.Selector[1].Selected || p.Selector[2].Selected {
		t.Error("only b should be selected")
	}
	if !p.Selector[0].Completed {
		t.Error("a should show completed")
	}
	if p.Selector[2].DifficultyClass != "destructive" {
		t.Errorf("DifficultyClass = %q", p.Selector[2].DifficultyClass)
	}

	if p.Exercise == nil || p.Exercise.ID != "b" {
		t.Fatalf("Exercise = %+v", p.Exercise)
	}
	if p.Exercise.HasHints() {
		t.Error("b has no hints")
	}

	if p.Editor == nil || p.Editor.Code != "print(1)" || p.Editor.SyntaxLanguage != "python" {
		t.Errorf("Editor = %+v", p.Editor)
	}
	if p.Editor.RunDisabled || p.Editor.RunLabel != "Run Code" {
		t.Errorf("run control = %q disabled=%v", p.Editor.RunLabel, p.Editor.RunDisabled)
	}
	if !p.Output.Empty() {
		t.Error("no result means the empty panel")
	}
}

func TestBuild_Running(t *testing.T) {
	st := sampleState()
	st.Running = true

	p := Build(st)
	if !p.Editor.RunDisabled || p.Editor.RunLabel != "Running..." {
		t.Errorf("run control = %q disabled=%v", p.Editor.RunLabel, p.Editor.RunDisabled)
	}
	if !p.Output.Running() {
		t.Error("output should show running")
	}
}

func TestBuild_NoSelection(t *testing.T) {
	st := sampleState()
	st.Selected = nil
	st.Editor = nil

	p := Build(st)
	if p.Exercise != nil || p.Editor != nil {
		t.Error("nothing selected means no exercise and no editor")
	}
	for _, item := range p.Selector {
		if item.Selected {
			t.Errorf("%s should not be selected", item.ID)
		}
	}
}

func TestDifficultyClass(t *testing.T) {
	tests := map[domain.Difficulty]string{
		domain.DifficultyBeginner:     "success",
		domain.DifficultyIntermediate: "warning",
		domain.DifficultyAdvanced:     "destructive",
		"unknown":                     "muted",
	}
	for d, want := range tests {
		if got := DifficultyClass(d); got != want {
			t.Errorf("DifficultyClass(%q) = %q, want %q", d, got, want)
		}
	}
}
