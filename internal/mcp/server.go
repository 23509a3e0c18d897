package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/session"
	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"
	"github.com/google/uuid"
)

// Server wraps the MCP server with CodeLab functionality
type Server struct {
	mcpServer      *server.Server
	sessionService *session.Service
}

// Config contains configuration for the MCP server
type Config struct {
	SessionService *session.Service
	Version        string
}

// NewServer creates a new MCP server for CodeLab
func NewServer(cfg Config) *Server {
	s := &Server{
		sessionService: cfg.SessionService,
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s.mcpServer = server.New(server.Info{
		Name:    "codelab",
		Version: version,
	}, server.WithInstructions(`
CodeLab is a set of small coding exercises with a mock grader.
Start a session, read the selected exercise, then submit code until it passes.

Available tools:
- codelab_exercises: List the exercises in catalog order
- codelab_start: Start a session (selects the first exercise by default)
- codelab_select: Switch the session to another exercise
- codelab_run: Submit code for the selected exercise
- codelab_reset: Restore the starter code and clear the last result
- codelab_status: Show progress and the last result

Completion only ever grows within a session. Reset never clears it.
`))

	s.registerTools()

	return s
}

// registerTools registers all CodeLab MCP tools
func (s *Server) registerTools() {
	s.mcpServer.Tool("codelab_exercises").
		Description("List the available exercises in order.").
		Handler(s.handleExercises)

	s.mcpServer.Tool("codelab_start").
		Description("Start a CodeLab session.").
		Handler(s.handleStart)

	s.mcpServer.Tool("codelab_select").
		Description("Select an exercise. Clears the last result and returns its starter code. Reset loads it into the editor.").
		Handler(s.handleSelect)

	s.mcpServer.Tool("codelab_run").
		Description("Run code against the selected exercise.").
		Handler(s.handleRun)

	s.mcpServer.Tool("codelab_reset").
		Description("Restore the starter code and clear the last result.").
		Handler(s.handleReset)

	s.mcpServer.Tool("codelab_status").
		Description("Get session progress and the last result.").
		Handler(s.handleStatus)
}

// Input/Output types for tools

type ExercisesInput struct {
	Difficulty string `json:"difficulty,omitempty" jsonschema:"description=Only list this difficulty,enum=beginner,enum=intermediate,enum=advanced"`
}

type ExerciseSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Language   string `json:"language"`
}

type ExercisesOutput struct {
	Exercises []ExerciseSummary `json:"exercises"`
}

type StartInput struct {
	ExerciseID string `json:"exercise_id,omitempty" jsonschema:"description=Exercise to select first (default: the first exercise)"`
}

type ExerciseOutput struct {
	SessionID      string   `json:"session_id"`
	ExerciseID     string   `json:"exercise_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Difficulty     string   `json:"difficulty"`
	Language       string   `json:"language"`
	StarterCode    string   `json:"starter_code"`
	ExpectedOutput string   `json:"expected_output"`
	Hints          []string `json:"hints"`
	Completed      bool     `json:"completed"`
}

type SelectInput struct {
	SessionID  string `json:"session_id" jsonschema:"description=Session ID from codelab_start"`
	ExerciseID string `json:"exercise_id" jsonschema:"description=Exercise ID from codelab_exercises"`
}

type RunInput struct {
	SessionID string `json:"session_id" jsonschema:"description=Session ID from codelab_start"`
	Code      string `json:"code" jsonschema:"description=Source code to submit"`
}

type RunOutput struct {
	ExerciseID      string `json:"exercise_id"`
	Success         bool   `json:"success"`
	Output          string `json:"output"`
	Error           string `json:"error,omitempty"`
	Suggestion      string `json:"suggestion,omitempty"`
	ExecutionTimeMS int    `json:"execution_time_ms,omitempty"`
	Failure         string `json:"failure,omitempty"`
	Summary         string `json:"summary"`
}

type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"description=Session ID from codelab_start"`
}

type ResetOutput struct {
	ExerciseID string `json:"exercise_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

type StatusOutput struct {
	SessionID    string     `json:"session_id"`
	ExerciseID   string     `json:"exercise_id,omitempty"`
	Running      bool       `json:"running"`
	Runs         int        `json:"runs"`
	Completed    int        `json:"completed"`
	Total        int        `json:"total"`
	Percent      int        `json:"percent"`
	CompletedIDs []string   `json:"completed_ids"`
	LastResult   *RunOutput `json:"last_result,omitempty"`
}

// Tool handlers

func (s *Server) handleExercises(ctx context.Context, input ExercisesInput) (ExercisesOutput, error) {
	out := ExercisesOutput{Exercises: []ExerciseSummary{}}
	for _, ex := range s.sessionService.Catalog().List() {
		if input.Difficulty != "" && string(ex.Difficulty) != input.Difficulty {
			continue
		}
		out.Exercises = append(out.Exercises, ExerciseSummary{
			ID:         ex.ID,
			Title:      ex.Title,
			Difficulty: string(ex.Difficulty),
			Language:   ex.Language,
		})
	}
	return out, nil
}

func (s *Server) handleStart(ctx context.Context, input StartInput) (ExerciseOutput, error) {
	st, err := s.sessionService.Create(ctx, session.CreateRequest{ExerciseID: input.ExerciseID})
	if err != nil {
		return ExerciseOutput{}, fmt.Errorf("failed to create session: %w", err)
	}
	return exerciseOutput(st), nil
}

func (s *Server) handleSelect(ctx context.Context, input SelectInput) (ExerciseOutput, error) {
	id, err := parseSessionID(input.SessionID)
	if err != nil {
		return ExerciseOutput{}, err
	}
	st, err := s.sessionService.Select(ctx, id, input.ExerciseID)
	if err != nil {
		return ExerciseOutput{}, fmt.Errorf("select failed: %w", err)
	}
	return exerciseOutput(st), nil
}

func (s *Server) handleRun(ctx context.Context, input RunInput) (RunOutput, error) {
	id, err := parseSessionID(input.SessionID)
	if err != nil {
		return RunOutput{}, err
	}

	st, err := s.sessionService.Run(ctx, id, input.Code)
	if err != nil {
		return RunOutput{}, fmt.Errorf("run failed: %w", err)
	}
	if st.Selected == nil {
		return RunOutput{}, fmt.Errorf("%w: no exercise selected", domain.ErrInvalidInput)
	}
	if st.Result == nil {
		// selection changed while the run was pending
		return RunOutput{ExerciseID: st.SelectedID(), Summary: "Result discarded: the selection changed"}, nil
	}

	out := runOutput(st.SelectedID(), st.Result)
	out.Summary = fmt.Sprintf("%s | Progress: %d/%d (%d%%)", out.Summary,
		st.Progress.Completed, st.Progress.Total, st.Percent())
	return out, nil
}

func (s *Server) handleReset(ctx context.Context, input SessionInput) (ResetOutput, error) {
	id, err := parseSessionID(input.SessionID)
	if err != nil {
		return ResetOutput{}, err
	}
	st, err := s.sessionService.Reset(ctx, id)
	if err != nil {
		return ResetOutput{}, fmt.Errorf("reset failed: %w", err)
	}

	out := ResetOutput{ExerciseID: st.SelectedID(), Message: "Editor reset to the starter code"}
	if st.Editor != nil {
		out.Code = st.Editor.Code
	}
	return out, nil
}

func (s *Server) handleStatus(ctx context.Context, input SessionInput) (StatusOutput, error) {
	id, err := parseSessionID(input.SessionID)
	if err != nil {
		return StatusOutput{}, err
	}
	st, err := s.sessionService.Get(ctx, id)
	if err != nil {
		return StatusOutput{}, fmt.Errorf("session not found: %w", err)
	}

	out := StatusOutput{
		SessionID:    st.ID.String(),
		ExerciseID:   st.SelectedID(),
		Running:      st.Running,
		Runs:         st.Runs,
		Completed:    st.Progress.Completed,
		Total:        st.Progress.Total,
		Percent:      st.Percent(),
		CompletedIDs: []string{},
	}
	for _, ex := range st.Exercises {
		if ex.Completed {
			out.CompletedIDs = append(out.CompletedIDs, ex.ID)
		}
	}
	if st.Result != nil {
		last := runOutput(st.SelectedID(), st.Result)
		out.LastResult = &last
	}
	return out, nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}

func parseSessionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, raw)
	}
	return id, nil
}

func exerciseOutput(st session.State) ExerciseOutput {
	out := ExerciseOutput{SessionID: st.ID.String(), Hints: []string{}}
	if st.Selected == nil {
		return out
	}
	ex := st.Selected
	out.ExerciseID = ex.ID
	out.Title = ex.Title
	out.Description = ex.Description
	out.Difficulty = string(ex.Difficulty)
	out.Language = ex.Language
	out.StarterCode = ex.StarterCode
	out.ExpectedOutput = ex.ExpectedOutput
	out.Completed = ex.Completed
	if len(ex.Hints) > 0 {
		out.Hints = ex.Hints
	}
	return out
}

func runOutput(exerciseID string, r *domain.RunResult) RunOutput {
	out := RunOutput{
		ExerciseID:      exerciseID,
		Success:         r.Success,
		Output:          r.Output,
		Error:           r.Error,
		Suggestion:      r.Suggestion,
		ExecutionTimeMS: r.ExecutionTimeMS,
		Failure:         string(r.Failure),
		Summary:         "Failed",
	}
	if r.Success {
		out.Summary = "Passed"
	}
	return out
}
