package domain

// Messages used for the generic failure substituted when the evaluator itself breaks
const (
	ExecutionFailedError      = "Execution failed"
	ExecutionFailedSuggestion = "Please check your code and try again."
)

// FailureKind separates a wrong submission from a broken grader
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureCode      FailureKind = "code"
	FailureEvaluator FailureKind = "evaluator"
)

// RunResult contains the outcome of a single run
type RunResult struct {
	Success         bool        `json:"success"`
	Output          string      `json:"output"`
	Error           string      `json:"error,omitempty"`
	Suggestion      string      `json:"suggestion,omitempty"`
	ExecutionTimeMS int         `json:"execution_time,omitempty"` // 0 means not measured
	Failure         FailureKind `json:"failure,omitempty"`
}

// HasError returns true if error text is present
func (r *RunResult) HasError() bool {
	return r.Error != ""
}

// HasSuggestion returns true if suggestion text is present
func (r *RunResult) HasSuggestion() bool {
	return r.Suggestion != ""
}

// HasExecutionTime returns true if an elapsed time was measured
func (r *RunResult) HasExecutionTime() bool {
	return r.ExecutionTimeMS > 0
}

// ExecutionFailed builds the result stored when the evaluator fails unexpectedly
func ExecutionFailed() *RunResult {
	return &RunResult{
		Success:    false,
		Output:     "",
		Error:      ExecutionFailedError,
		Suggestion: ExecutionFailedSuggestion,
		Failure:    FailureEvaluator,
	}
}
