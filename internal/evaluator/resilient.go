package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
)

// ResilientConfig holds configuration for the resilient evaluator wrapper
type ResilientConfig struct {
	// Timeout bounds a single evaluation (0 disables)
	Timeout time.Duration

	// EnableCircuitBreaker stops calling an evaluator that keeps failing
	EnableCircuitBreaker bool

	// MaxConcurrent limits evaluations in flight across all sessions (0 disables)
	MaxConcurrent int

	// Logger for resilience events
	Logger *slog.Logger
}

// DefaultResilientConfig returns defaults matching the daemon config
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Timeout:              30 * time.Second,
		EnableCircuitBreaker: true,
		MaxConcurrent:        8,
	}
}

// Resilient wraps an evaluator with a timeout, a bulkhead and a circuit breaker
type Resilient struct {
	inner          Evaluator
	timeout        time.Duration
	circuitBreaker circuitbreaker.CircuitBreaker[*domain.RunResult]
	bulkhead       bulkhead.Bulkhead[*domain.RunResult]
	logger         *slog.Logger
}

// NewResilient wraps inner with the patterns enabled in cfg
func NewResilient(inner Evaluator, cfg ResilientConfig) *Resilient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resilient{
		inner:   inner,
		timeout: cfg.Timeout,
		logger:  logger,
	}

	if cfg.EnableCircuitBreaker {
		r.circuitBreaker = circuitbreaker.New[*domain.RunResult](circuitbreaker.Config{
			MaxRequests: 2,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn("evaluator circuit breaker state change",
					"from", from.String(),
					"to", to.String())
			},
		})
	}

	if cfg.MaxConcurrent > 0 {
		r.bulkhead = bulkhead.New[*domain.RunResult](bulkhead.Config{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxQueue:      cfg.MaxConcurrent * 4,
			QueueTimeout:  10 * time.Second,
		})
	}

	return r
}

// Evaluate runs the wrapped evaluator under the configured limits
func (r *Resilient) Evaluate(ctx context.Context, sub Submission) (*domain.RunResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	operation := func(ctx context.Context) (*domain.RunResult, error) {
		result, err := r.inner.Evaluate(ctx, sub)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, fmt.Errorf("%w: evaluator returned no result", domain.ErrInternalError)
		}
		return result, nil
	}

	if r.bulkhead != nil {
		limited := operation
		operation = func(ctx context.Context) (*domain.RunResult, error) {
			return r.bulkhead.Execute(ctx, limited)
		}
	}

	if r.circuitBreaker != nil {
		return r.circuitBreaker.Execute(ctx, operation)
	}
	return operation(ctx)
}
