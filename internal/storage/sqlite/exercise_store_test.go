package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

func sampleExercises() []domain.Exercise {
	return []domain.Exercise{
		{
			ID:             "hello-world",
			Title:          "Hello, World!",
			Description:    "Print a greeting.",
			Difficulty:     domain.DifficultyBeginner,
			Language:       "Python",
			StarterCode:    "# Write your code here\n",
			ExpectedOutput: "Hello, World!",
			Hints:          []string{"Use print()."},
		},
		{
			ID:         "fizzbuzz",
			Title:      "FizzBuzz",
			Difficulty: domain.DifficultyIntermediate,
			Language:   "Python",
		},
	}
}

func TestExerciseStore_ImportAndList(t *testing.T) {
	store := NewExerciseStore(openTestDB(t))

	if err := store.Import("codelab-python", sampleExercises()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	list, err := store.Exercises(context.Background())
	if err != nil {
		t.Fatalf("Exercises() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].ID != "hello-world" || list[1].ID != "fizzbuzz" {
		t.Errorf("order = [%s %s], want import order", list[0].ID, list[1].ID)
	}
	if list[0].StarterCode != "# Write your code here\n" {
		t.Errorf("StarterCode = %q", list[0].StarterCode)
	}
	if len(list[0].Hints) != 1 || list[0].Hints[0] != "Use print()." {
		t.Errorf("Hints = %v", list[0].Hints)
	}
	if list[1].Hints == nil {
		t.Error("Hints should decode to an empty slice")
	}
	if list[0].Completed || list[1].Completed {
		t.Error("completion is never stored in the catalog")
	}
}

func TestExerciseStore_ImportReplaces(t *testing.T) {
	store := NewExerciseStore(openTestDB(t))

	if err := store.Import("a", sampleExercises()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if err := store.Import("b", sampleExercises()[1:]); err != nil {
		t.Fatalf("second Import() error = %v", err)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestExerciseStore_ImportRollsBackInvalid(t *testing.T) {
	store := NewExerciseStore(openTestDB(t))
	if err := store.Import("a", sampleExercises()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	bad := append(sampleExercises(), domain.Exercise{ID: "broken"})
	if err := store.Import("a", bad); !errors.Is(err, domain.ErrInvalidExercise) {
		t.Fatalf("Import() error = %v, want ErrInvalidExercise", err)
	}

	n, _ := store.Count()
	if n != 2 {
		t.Errorf("Count() = %d, want previous catalog of 2 after rollback", n)
	}
}

func TestExerciseStore_ImportUpdatesChangedExercises(t *testing.T) {
	store := NewExerciseStore(openTestDB(t))
	if err := store.Import("p", sampleExercises()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	changed := sampleExercises()
	changed[0].Title = "Hello again"
	changed[0], changed[1] = changed[1], changed[0]
	if err := store.Import("p", changed); err != nil {
		t.Fatalf("second Import() error = %v", err)
	}

	list, err := store.Exercises(context.Background())
	if err != nil {
		t.Fatalf("Exercises() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "fizzbuzz" || list[1].Title != "Hello again" {
		t.Errorf("catalog = %+v, want reordered and retitled", list)
	}
}
