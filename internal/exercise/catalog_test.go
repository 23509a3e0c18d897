package exercise

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

func fixedSource(list ...domain.Exercise) Source {
	return SourceFunc(func(ctx context.Context) ([]domain.Exercise, error) {
		return list, nil
	})
}

func TestLoadCatalog_Builtin(t *testing.T) {
	c, err := LoadCatalog(context.Background(), BuiltinSource{})
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	list := c.List()
	wantOrder := []string{"hello-world", "add-numbers", "fizzbuzz"}
	for i, id := range wantOrder {
		if list[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, list[i].ID, id)
		}
	}
}

func TestCatalog_Load_Errors(t *testing.T) {
	srcErr := errors.New("boom")

	tests := []struct {
		name    string
		src     Source
		wantErr error
	}{
		{"empty", fixedSource(), domain.ErrEmptyCatalog},
		{"invalid", fixedSource(domain.Exercise{ID: "x"}), domain.ErrInvalidExercise},
		{"duplicate", fixedSource(
			domain.Exercise{ID: "a", Title: "A", Difficulty: domain.DifficultyBeginner},
			domain.Exercise{ID: "a", Title: "A2", Difficulty: domain.DifficultyAdvanced},
		), domain.ErrDuplicateID},
		{"source error", SourceFunc(func(ctx context.Context) ([]domain.Exercise, error) {
			return nil, srcErr
		}), srcErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(context.Background(), tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadCatalog() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog_Get(t *testing.T) {
	c, err := LoadCatalog(context.Background(), BuiltinSource{})
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	ex, err := c.Get("fizzbuzz")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ex.Title != "FizzBuzz" {
		t.Errorf("Title = %q, want FizzBuzz", ex.Title)
	}

	if _, err := c.Get("nope"); !errors.Is(err, domain.ErrExerciseNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrExerciseNotFound", err)
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c, err := LoadCatalog(context.Background(), BuiltinSource{})
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	list := c.List()
	list[0].Completed = true
	list[0].Hints[0] = "mutated"

	again, _ := c.Get(list[0].ID)
	if again.Completed {
		t.Error("catalog entry completion must not change through a returned copy")
	}
	if again.Hints[0] == "mutated" {
		t.Error("catalog hints must not be shared with callers")
	}
}

func TestCatalog_NilHintsNormalized(t *testing.T) {
	c, err := LoadCatalog(context.Background(), fixedSource(
		domain.Exercise{ID: "a", Title: "A", Difficulty: domain.DifficultyBeginner},
	))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	ex, _ := c.Get("a")
	if ex.Hints == nil {
		t.Error("Hints should be an empty slice, not nil")
	}
}

func TestCatalog_Stats(t *testing.T) {
	c, err := LoadCatalog(context.Background(), BuiltinSource{})
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	stats := c.Stats()
	if stats.ExerciseCount != 3 {
		t.Errorf("ExerciseCount = %d, want 3", stats.ExerciseCount)
	}
	if stats.ByDifficulty["beginner"] != 2 || stats.ByDifficulty["intermediate"] != 1 {
		t.Errorf("ByDifficulty = %v", stats.ByDifficulty)
	}
	if stats.ByLanguage["Python"] != 3 {
		t.Errorf("ByLanguage = %v", stats.ByLanguage)
	}
}
