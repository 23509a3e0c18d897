package domain

import (
	"errors"
	"testing"
)

func TestDifficulty_Valid(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		want       bool
	}{
		{DifficultyBeginner, true},
		{DifficultyIntermediate, true},
		{DifficultyAdvanced, true},
		{Difficulty("expert"), false},
		{Difficulty(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			if got := tt.difficulty.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExercise_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ex      Exercise
		wantErr bool
	}{
		{"valid", Exercise{ID: "hello", Title: "Hello", Difficulty: DifficultyBeginner}, false},
		{"missing id", Exercise{Title: "Hello", Difficulty: DifficultyBeginner}, true},
		{"missing title", Exercise{ID: "hello", Difficulty: DifficultyBeginner}, true},
		{"bad difficulty", Exercise{ID: "hello", Title: "Hello", Difficulty: "hard"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ex.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidExercise) {
				t.Errorf("Validate() error = %v, want ErrInvalidExercise", err)
			}
		})
	}
}

func TestExercise_Clone(t *testing.T) {
	original := Exercise{ID: "fizz", Hints: []string{"use modulo"}}

	clone := original.Clone()
	clone.Hints[0] = "changed"
	clone.Completed = true

	if original.Hints[0] != "use modulo" {
		t.Error("Clone() should copy hints")
	}
	if original.Completed {
		t.Error("Clone() should not share completion flag")
	}
}

func TestExercise_HasHints(t *testing.T) {
	if (&Exercise{}).HasHints() {
		t.Error("HasHints() = true for exercise without hints")
	}
	if !(&Exercise{Hints: []string{"a"}}).HasHints() {
		t.Error("HasHints() = false for exercise with a hint")
	}
}

func TestProgressOf(t *testing.T) {
	tests := []struct {
		name        string
		exercises   []Exercise
		wantDone    int
		wantPercent int
	}{
		{"empty", nil, 0, 0},
		{"none completed", []Exercise{{ID: "a"}, {ID: "b"}}, 0, 0},
		{"one of two", []Exercise{{ID: "a", Completed: true}, {ID: "b"}}, 1, 50},
		{"one of three", []Exercise{{ID: "a", Completed: true}, {ID: "b"}, {ID: "c"}}, 1, 33},
		{"two of three", []Exercise{{ID: "a", Completed: true}, {ID: "b", Completed: true}, {ID: "c"}}, 2, 67},
		{"all", []Exercise{{ID: "a", Completed: true}}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProgressOf(tt.exercises)
			if p.Completed != tt.wantDone {
				t.Errorf("Completed = %d, want %d", p.Completed, tt.wantDone)
			}
			if p.Total != len(tt.exercises) {
				t.Errorf("Total = %d, want %d", p.Total, len(tt.exercises))
			}
			if got := p.Percent(); got != tt.wantPercent {
				t.Errorf("Percent() = %d, want %d", got, tt.wantPercent)
			}
		})
	}
}
