package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/evaluator"
	"github.com/felixgeelhaar/codelab/internal/exercise"
	"github.com/felixgeelhaar/codelab/internal/session"
	"github.com/google/uuid"
)

// setupTestServer creates a test MCP server over the built-in exercises
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	catalog, err := exercise.LoadCatalog(context.Background(), exercise.BuiltinSource{})
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	svc := session.NewService(catalog, evaluator.NewMock(evaluator.WithDelay(0, 0)))
	t.Cleanup(func() { svc.Close() })

	return NewServer(Config{SessionService: svc, Version: "test"})
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)

	if server.GetMCPServer() == nil {
		t.Fatal("expected non-nil underlying MCP server")
	}
	if server.sessionService == nil {
		t.Fatal("expected non-nil session service")
	}
}

func TestServerConfig(t *testing.T) {
	// nil services must not panic at construction
	if NewServer(Config{}) == nil {
		t.Fatal("expected non-nil server even with empty config")
	}
}

func TestHandleExercises(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		difficulty string
		wantIDs    []string
	}{
		{"all", "", []string{"hello-world", "add-numbers", "fizzbuzz"}},
		{"beginner", "beginner", []string{"hello-world", "add-numbers"}},
		{"advanced", "advanced", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := server.handleExercises(ctx, ExercisesInput{Difficulty: tt.difficulty})
			if err != nil {
				t.Fatalf("handleExercises() error = %v", err)
			}
			if len(out.Exercises) != len(tt.wantIDs) {
				t.Fatalf("got %d exercises, want %d", len(out.Exercises), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if out.Exercises[i].ID != id {
					t.Errorf("exercise[%d] = %q, want %q", i, out.Exercises[i].ID, id)
				}
			}
		})
	}
}

func TestHandleStart(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	out, err := server.handleStart(ctx, StartInput{})
	if err != nil {
		t.Fatalf("handleStart() error = %v", err)
	}
	if _, err := uuid.Parse(out.SessionID); err != nil {
		t.Errorf("session id %q is not a UUID", out.SessionID)
	}
	if out.ExerciseID != "hello-world" || out.StarterCode == "" {
		t.Errorf("unexpected start output %+v", out)
	}

	out, err = server.handleStart(ctx, StartInput{ExerciseID: "fizzbuzz"})
	if err != nil {
		t.Fatalf("handleStart(fizzbuzz) error = %v", err)
	}
	if out.ExerciseID != "fizzbuzz" || len(out.Hints) != 3 {
		t.Errorf("unexpected start output %+v", out)
	}

	if _, err := server.handleStart(ctx, StartInput{ExerciseID: "nope"}); !errors.Is(err, domain.ErrExerciseNotFound) {
		t.Errorf("unknown exercise error = %v, want ErrExerciseNotFound", err)
	}
}

func TestRunSelectResetStatus(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	start, err := server.handleStart(ctx, StartInput{})
	if err != nil {
		t.Fatalf("handleStart() error = %v", err)
	}
	sid := start.SessionID

	run, err := server.handleRun(ctx, RunInput{SessionID: sid, Code: `print("Hello, World!")`})
	if err != nil {
		t.Fatalf("handleRun() error = %v", err)
	}
	if !run.Success || run.Output != evaluator.HelloOutput {
		t.Errorf("unexpected run output %+v", run)
	}
	if run.Summary != "Passed | Progress: 1/3 (33%)" {
		t.Errorf("summary = %q", run.Summary)
	}

	sel, err := server.handleSelect(ctx, SelectInput{SessionID: sid, ExerciseID: "add-numbers"})
	if err != nil {
		t.Fatalf("handleSelect() error = %v", err)
	}
	if sel.ExerciseID != "add-numbers" {
		t.Errorf("selected = %q, want add-numbers", sel.ExerciseID)
	}

	run, err = server.handleRun(ctx, RunInput{SessionID: sid, Code: "def add_numbers(a, b):\n    pass"})
	if err != nil {
		t.Fatalf("handleRun() error = %v", err)
	}
	if run.Success || run.Failure != string(domain.FailureCode) || run.Suggestion == "" {
		t.Errorf("unexpected failing run %+v", run)
	}

	reset, err := server.handleReset(ctx, SessionInput{SessionID: sid})
	if err != nil {
		t.Fatalf("handleReset() error = %v", err)
	}
	if reset.Code != sel.StarterCode {
		t.Errorf("reset code = %q, want starter", reset.Code)
	}

	status, err := server.handleStatus(ctx, SessionInput{SessionID: sid})
	if err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}
	if status.Completed != 1 || status.Total != 3 || status.Percent != 33 {
		t.Errorf("progress = %d/%d (%d%%)", status.Completed, status.Total, status.Percent)
	}
	if len(status.CompletedIDs) != 1 || status.CompletedIDs[0] != "hello-world" {
		t.Errorf("completed ids = %v", status.CompletedIDs)
	}
	if status.LastResult != nil {
		t.Error("reset should have cleared the last result")
	}
	if status.Runs != 2 {
		t.Errorf("runs = %d, want 2", status.Runs)
	}
}

func TestInvalidSessionID(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, err := server.handleStatus(ctx, SessionInput{SessionID: "not-a-uuid"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("malformed id error = %v, want ErrInvalidInput", err)
	}
	if _, err := server.handleRun(ctx, RunInput{SessionID: uuid.NewString()}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("unknown session error = %v, want ErrSessionNotFound", err)
	}
}
