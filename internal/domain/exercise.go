package domain

import (
	"fmt"
	"math"
)

// Exercise represents a single coding problem shown to the learner
type Exercise struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Difficulty     Difficulty `json:"difficulty"`
	Language       string     `json:"language"` // free-form tag, e.g. "Python"
	StarterCode    string     `json:"initial_code"`
	ExpectedOutput string     `json:"expected_output"`
	Hints          []string   `json:"hints"`
	Completed      bool       `json:"completed"`
}

// Difficulty represents exercise difficulty level
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// HasHints returns true if the exercise carries at least one hint
func (e *Exercise) HasHints() bool {
	return len(e.Hints) > 0
}

// Clone returns a deep copy of the exercise
func (e Exercise) Clone() Exercise {
	c := e
	if e.Hints != nil {
		c.Hints = make([]string, len(e.Hints))
		copy(c.Hints, e.Hints)
	}
	return c
}

// Validate checks the fields a catalog entry must carry
func (e *Exercise) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: exercise id is required", ErrInvalidExercise)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: exercise %s has no title", ErrInvalidExercise, e.ID)
	}
	if !e.Difficulty.Valid() {
		return fmt.Errorf("%w: exercise %s has unknown difficulty %q", ErrInvalidExercise, e.ID, e.Difficulty)
	}
	return nil
}

// Progress summarizes how many exercises of a list are completed
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// ProgressOf counts completed exercises
func ProgressOf(exercises []Exercise) Progress {
	p := Progress{Total: len(exercises)}
	for _, ex := range exercises {
		if ex.Completed {
			p.Completed++
		}
	}
	return p
}

// Ratio returns completed/total×100 without rounding. Empty lists report 0.
func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Percent returns the completion percentage rounded to the nearest whole number
func (p Progress) Percent() int {
	return int(math.Round(p.Ratio()))
}
