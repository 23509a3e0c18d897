package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"
)

// Publisher sends one JSON message to the event queue
type Publisher interface {
	PublishJSON(ctx context.Context, data any) error
}

// Producer publishes run events, retrying transient broker failures
type Producer struct {
	pub     Publisher
	retrier retry.Retry[struct{}]
	logger  *slog.Logger
}

// ProducerConfig holds producer retry settings
type ProducerConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Logger       *slog.Logger
}

// DefaultProducerConfig returns sensible defaults
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
	}
}

// NewProducer creates a new queue producer
func NewProducer(pub Publisher, cfg ProducerConfig) *Producer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Producer{
		pub: pub,
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      5 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable: func(err error) bool {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			},
		}),
		logger: logger,
	}
}

// Publish sends ev to the queue
func (p *Producer) Publish(ctx context.Context, ev *RunEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	_, err := p.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.pub.PublishJSON(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}

	p.logger.Debug("published run event",
		"event_id", ev.ID,
		"type", ev.Type,
		"session_id", ev.SessionID,
		"exercise_id", ev.ExerciseID,
	)
	return nil
}
