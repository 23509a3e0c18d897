package view

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

func TestRenderer_Page(t *testing.T) {
	r := newTestRenderer(t)
	p := Build(sampleState())

	var buf bytes.Buffer
	if err := r.Page(&buf, p); err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<title>CodeLab</title>",
		`data-session="` + p.SessionID + `"`,
		"1/3",
		"33%",
		"Learning Path",
		`data-exercise="b"`,
		"Run your code to see the output here.",
		"Run Code",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRenderer_Placeholder(t *testing.T) {
	r := newTestRenderer(t)
	st := sampleState()
	st.Selected, st.Editor = nil, nil

	html, err := r.Fragment(FragmentMain, Build(st))
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}
	if !strings.Contains(html, "Select an Exercise") {
		t.Error("placeholder not rendered")
	}
	if strings.Contains(html, "<textarea") {
		t.Error("editor must not render without a selection")
	}
}

func TestRenderer_Hints(t *testing.T) {
	r := newTestRenderer(t)
	st := sampleState()
	a := st.Exercises[0]
	st.Selected = &a

	html, err := r.Fragment(FragmentExercise, Build(st))
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}
	if !strings.Contains(html, "Hints (2)") {
		t.Error("hints summary missing")
	}

	st.Selected = &st.Exercises[1]
	html, _ = r.Fragment(FragmentExercise, Build(st))
	if strings.Contains(html, "Hints") {
		t.Error("hints block must be omitted when there are none")
	}
}

func TestRenderer_OutputVariants(t *testing.T) {
	r := newTestRenderer(t)
	st := sampleState()

	st.Running = true
	html, _ := r.Fragment(FragmentOutput, Build(st))
	if !strings.Contains(html, "Running Code...") {
		t.Error("running variant missing")
	}

	st.Running = false
	st.Result = &domain.RunResult{Success: false, Error: "SyntaxError: incomplete or invalid code", Suggestion: "Check it", ExecutionTimeMS: 7}
	html, _ = r.Fragment(FragmentOutput, Build(st))
	for _, want := range []string{"Failed", "7ms", "No output", "SyntaxError: incomplete or invalid code", "Suggestion", "Check it"} {
		if !strings.Contains(html, want) {
			t.Errorf("failure output missing %q", want)
		}
	}

	st.Result = &domain.RunResult{Success: true, Output: "8"}
	html, _ = r.Fragment(FragmentOutput, Build(st))
	if !strings.Contains(html, "Passed") || strings.Contains(html, "ms</span>") {
		t.Error("success without elapsed time renders no time badge")
	}
	if strings.Contains(html, "<h4>Error</h4>") || strings.Contains(html, "<h4>Suggestion</h4>") {
		t.Error("error and suggestion blocks are conditional")
	}
}

func TestRenderer_EscapesCode(t *testing.T) {
	r := newTestRenderer(t)
	st := sampleState()
	st.Editor.Code = `</textarea><script>alert(1)</script>`

	html, err := r.Fragment("editor", Build(st))
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("editor code must be escaped")
	}
}

func TestRenderer_Controls(t *testing.T) {
	r := newTestRenderer(t)
	st := sampleState()
	st.Running = true

	html, err := r.Fragment(FragmentControls, Build(st))
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}
	if !strings.Contains(html, "disabled") || !strings.Contains(html, "Running...") {
		t.Error("run control must be disabled while running")
	}
}

func TestRenderer_Fragments(t *testing.T) {
	r := newTestRenderer(t)
	frags, err := r.Fragments(Build(sampleState()), FragmentHeader, FragmentSelector, FragmentOutput)
	if err != nil {
		t.Fatalf("Fragments() error = %v", err)
	}
	if len(frags) != 3 {
		t.Errorf("len = %d, want 3", len(frags))
	}

	if _, err := r.Fragment("nope", Build(sampleState())); err == nil {
		t.Error("unknown fragment should fail")
	}
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"app.js", "app.css"} {
		if _, err := fs.Stat(Static(), name); err != nil {
			t.Errorf("static %s missing: %v", name, err)
		}
	}
}
