package exercise

import (
	"context"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

// Builtin returns the exercises compiled into the binary
func Builtin() []domain.Exercise {
	return []domain.Exercise{
		{
			ID:             "hello-world",
			Title:          "Hello, World!",
			Description:    "Write a program that prints \"Hello, World!\" to the console. This is traditionally the first program you write in a new language.",
			Difficulty:     domain.DifficultyBeginner,
			Language:       "Python",
			StarterCode:    "# Write your code here\n",
			ExpectedOutput: "Hello, World!",
			Hints: []string{
				"Use the print() function to write text to the console.",
				"Text must be wrapped in quotes to be a string.",
			},
		},
		{
			ID:             "add-numbers",
			Title:          "Add Two Numbers",
			Description:    "Write a function called add_numbers that takes two parameters and returns their sum. Then print the result of add_numbers(3, 5).",
			Difficulty:     domain.DifficultyBeginner,
			Language:       "Python",
			StarterCode:    "def add_numbers(a, b):\n    # Your code here\n    pass\n\nprint(add_numbers(3, 5))\n",
			ExpectedOutput: "8",
			Hints: []string{
				"Use the return keyword to send a value back from a function.",
				"The + operator adds two numbers.",
			},
		},
		{
			ID:             "fizzbuzz",
			Title:          "FizzBuzz",
			Description:    "Print the numbers from 1 to 15. For multiples of 3 print \"Fizz\" instead of the number, for multiples of 5 print \"Buzz\", and for multiples of both print \"FizzBuzz\".",
			Difficulty:     domain.DifficultyIntermediate,
			Language:       "Python",
			StarterCode:    "for i in range(1, 16):\n    # Your code here\n    pass\n",
			ExpectedOutput: "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz",
			Hints: []string{
				"The modulo operator % gives the remainder of a division.",
				"Check the FizzBuzz case before the Fizz and Buzz cases.",
				"A number divisible by both 3 and 5 is divisible by 15.",
			},
		},
	}
}

// BuiltinSource serves the compiled-in exercises
type BuiltinSource struct{}

// Exercises returns a fresh copy of the built-in list
func (BuiltinSource) Exercises(ctx context.Context) ([]domain.Exercise, error) {
	return Builtin(), nil
}

// PackSource reads one YAML exercise pack
type PackSource struct {
	Loader *Loader
	PackID string
}

// Exercises loads the pack's exercises in pack order
func (s PackSource) Exercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.Loader.LoadPackExercises(s.PackID)
}
