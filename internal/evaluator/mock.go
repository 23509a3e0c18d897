package evaluator

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

// Canned payloads returned by the mock
const (
	HelloOutput    = "Hello, World!"
	AddOutput      = "8"
	FizzBuzzOutput = "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz"

	SyntaxError      = "SyntaxError: incomplete or invalid code"
	SyntaxSuggestion = "Make sure to implement all required functionality and check your syntax."
)

// rule is one pattern the mock recognizes. Elapsed time is drawn from
// [minMS, minMS+spanMS).
type rule struct {
	name   string
	match  func(code string) bool
	result domain.RunResult
	minMS  int
	spanMS int
}

var rules = []rule{
	{
		name:   "hello",
		match:  func(code string) bool { return strings.Contains(code, `print("Hello, World!")`) },
		result: domain.RunResult{Success: true, Output: HelloOutput},
		minMS:  10,
		spanMS: 50,
	},
	{
		name: "add",
		match: func(code string) bool {
			return strings.Contains(code, "def add_numbers") && strings.Contains(code, "return a + b")
		},
		result: domain.RunResult{Success: true, Output: AddOutput},
		minMS:  5,
		spanMS: 30,
	},
	{
		name: "fizzbuzz",
		match: func(code string) bool {
			return strings.Contains(code, "FizzBuzz") ||
				(strings.Contains(code, "Fizz") && strings.Contains(code, "Buzz"))
		},
		result: domain.RunResult{Success: true, Output: FizzBuzzOutput},
		minMS:  20,
		spanMS: 80,
	},
}

var fallback = rule{
	name: "syntax",
	result: domain.RunResult{
		Success:    false,
		Output:     "",
		Error:      SyntaxError,
		Suggestion: SyntaxSuggestion,
		Failure:    domain.FailureCode,
	},
	minMS:  5,
	spanMS: 20,
}

// Mock pretends to run code. It never executes anything: after a random
// delay it matches the source against a few fixed patterns, first match
// wins. The expected output of the exercise is ignored.
type Mock struct {
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// MockOption configures a Mock
type MockOption func(*Mock)

// WithDelay sets the simulated delay range
func WithDelay(min, max time.Duration) MockOption {
	return func(m *Mock) {
		if min < 0 {
			min = 0
		}
		if max < min {
			max = min
		}
		m.minDelay, m.maxDelay = min, max
	}
}

// WithRand sets the random source used for delays and elapsed times
func WithRand(r *rand.Rand) MockOption {
	return func(m *Mock) {
		m.rng = r
	}
}

// NewMock creates a mock evaluator with a 1–2s delay
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		minDelay: time.Second,
		maxDelay: 2 * time.Second,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Evaluate waits for the simulated delay and returns the canned result
// for the first matching pattern. Cancelling ctx aborts the wait.
func (m *Mock) Evaluate(ctx context.Context, sub Submission) (*domain.RunResult, error) {
	delay := m.delay()
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := match(sub.Code)
	result := r.result
	result.ExecutionTimeMS = r.minMS + m.intN(r.spanMS)
	return &result, nil
}

// Classify reports which pattern code matches ("hello", "add", "fizzbuzz"
// or "syntax") and the canned result without delay or elapsed time.
func Classify(code string) (string, domain.RunResult) {
	r := match(code)
	return r.name, r.result
}

func match(code string) rule {
	for _, r := range rules {
		if r.match(code) {
			return r
		}
	}
	return fallback
}

// delay draws from [minDelay, maxDelay)
func (m *Mock) delay() time.Duration {
	span := m.maxDelay - m.minDelay
	if span <= 0 {
		return m.minDelay
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minDelay + time.Duration(m.rng.Int64N(int64(span)))
}

func (m *Mock) intN(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.IntN(n)
}
