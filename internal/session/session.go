package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/editor"
	"github.com/google/uuid"
)

// Session is the state of one page: the exercise list with completion
// flags, the selection, the editor, the current result and the running flag.
// All mutation goes through the action methods below.
type Session struct {
	ID uuid.UUID

	mu         sync.Mutex
	exercises  []domain.Exercise
	selected   int // -1 when nothing is selected
	editor     *editor.Editor
	result     *domain.RunResult
	running    bool
	generation uint64
	runs       int

	CreatedAt  time.Time
	lastActive time.Time
}

// Pending describes a run between BeginRun and FinishRun
type Pending struct {
	ExerciseID     string
	Code           string
	Language       string
	ExpectedOutput string
	generation     uint64
}

// New creates a session over its own copy of exercises with nothing selected
func New(exercises []domain.Exercise) *Session {
	list := make([]domain.Exercise, len(exercises))
	for i := range exercises {
		list[i] = exercises[i].Clone()
	}

	now := time.Now()
	return &Session{
		ID:         uuid.New(),
		exercises:  list,
		selected:   -1,
		CreatedAt:  now,
		lastActive: now,
	}
}

// Select makes id the current exercise and always clears the result. The
// first selection mounts the editor with the starter code; later ones keep
// the learner's buffer and only retarget language and reset code.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrExerciseNotFound, id)
	}

	ex := s.exercises[idx]
	s.selected = idx
	if s.editor == nil {
		s.editor = editor.New(ex.Language, ex.StarterCode)
	} else {
		s.editor.Retarget(ex.Language, ex.StarterCode)
	}
	s.result = nil
	s.generation++
	s.touch()
	return nil
}

// BeginRun starts a run of code against the selected exercise. It returns
// nil without changing anything when no exercise is selected, and
// ErrRunInProgress while another run is pending.
func (s *Session) BeginRun(code string) (*Pending, error) {
	return s.BeginRunIf(code, nil)
}

// BeginRunIf is BeginRun with an admission check. admit is consulted only
// once the run could otherwise start; returning false fails with
// ErrRateLimited and leaves the session untouched.
func (s *Session) BeginRunIf(code string, admit func() bool) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected < 0 {
		return nil, nil
	}
	if s.running {
		return nil, domain.ErrRunInProgress
	}
	if admit != nil && !admit() {
		return nil, domain.ErrRateLimited
	}

	ex := s.exercises[s.selected]
	p := &Pending{
		ExerciseID:     ex.ID,
		Language:       ex.Language,
		ExpectedOutput: ex.ExpectedOutput,
		generation:     s.generation,
	}

	s.editor.SetBuffer(code)
	s.editor.Run(func(live string) { p.Code = live })

	s.running = true
	s.result = nil
	s.runs++
	s.touch()

	return p, nil
}

// FinishRun records the outcome of p. A success marks p's exercise completed
// even if the learner has moved on; the result only becomes current when
// nothing was selected or reset since BeginRun. The running flag is cleared
// in every case.
func (s *Session) FinishRun(p *Pending, result *domain.RunResult) (current, newlyCompleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.touch()

	if result.Success {
		if idx := s.indexOf(p.ExerciseID); idx >= 0 && !s.exercises[idx].Completed {
			s.exercises[idx].Completed = true
			newlyCompleted = true
		}
	}

	if p.generation == s.generation {
		r := *result
		s.result = &r
		current = true
	}
	return current, newlyCompleted
}

// Reset restores the editor to its starter code and clears the result.
// Completion flags and the editor language are left alone.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clearResult := func() {
		s.result = nil
		s.generation++
	}
	if s.editor != nil {
		s.editor.Reset(clearResult)
	} else {
		clearResult()
	}
	s.touch()
}

// SetCode stores an edit without running it
func (s *Session) SetCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor != nil {
		s.editor.SetBuffer(code)
	}
	s.touch()
}

// Running reports whether a run is pending
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Progress returns completed/total over the session's exercise list
func (s *Session) Progress() domain.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ProgressOf(s.exercises)
}

// IdleSince reports when the session was last touched
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Snapshot returns a consistent copy of the session state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:        s.ID,
		Exercises: make([]domain.Exercise, len(s.exercises)),
		Running:   s.running,
		Runs:      s.runs,
		Progress:  domain.ProgressOf(s.exercises),
		CreatedAt: s.CreatedAt,
	}
	for i := range s.exercises {
		st.Exercises[i] = s.exercises[i].Clone()
	}
	if s.selected >= 0 {
		ex := s.exercises[s.selected].Clone()
		st.Selected = &ex
	}
	if s.editor != nil {
		st.Editor = &EditorState{
			Language:       s.editor.Language(),
			SyntaxLanguage: s.editor.SyntaxLanguage(),
			Code:           s.editor.Buffer(),
			Dirty:          s.editor.Dirty(),
		}
	}
	if s.result != nil {
		r := *s.result
		st.Result = &r
	}
	return st
}

func (s *Session) indexOf(id string) int {
	for i := range s.exercises {
		if s.exercises[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

// State is a read-only copy of a session
type State struct {
	ID        uuid.UUID         `json:"id"`
	Exercises []domain.Exercise `json:"exercises"`
	Selected  *domain.Exercise  `json:"selected,omitempty"`
	Editor    *EditorState      `json:"editor,omitempty"`
	Result    *domain.RunResult `json:"result,omitempty"`
	Running   bool              `json:"running"`
	Runs      int               `json:"runs"`
	Progress  domain.Progress   `json:"progress"`
	CreatedAt time.Time         `json:"created_at"`
}

// EditorState is the editor part of a snapshot
type EditorState struct {
	Language       string `json:"language"`
	SyntaxLanguage string `json:"syntax_language"`
	Code           string `json:"code"`
	Dirty          bool   `json:"dirty"`
}

// Percent returns the rounded completion percentage
func (st State) Percent() int {
	return st.Progress.Percent()
}

// SelectedID returns the selected exercise ID or ""
func (st State) SelectedID() string {
	if st.Selected == nil {
		return ""
	}
	return st.Selected.ID
}
