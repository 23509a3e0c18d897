// Package evaluator grades submitted code and produces run results.
package evaluator

import (
	"context"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

// Submission is the code sent for a single run
type Submission struct {
	Code           string
	Language       string
	ExpectedOutput string
}

// Evaluator turns a submission into a run result. An error means the
// evaluator itself failed; a wrong submission is reported through
// RunResult.Success instead.
type Evaluator interface {
	Evaluate(ctx context.Context, sub Submission) (*domain.RunResult, error)
}

// Func adapts a plain function to the Evaluator interface
type Func func(ctx context.Context, sub Submission) (*domain.RunResult, error)

// Evaluate calls f(ctx, sub)
func (f Func) Evaluate(ctx context.Context, sub Submission) (*domain.RunResult, error) {
	return f(ctx, sub)
}
