// Package app assembles the catalog, evaluator and session service from
// the local configuration. Every binary builds its controller here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/codelab/internal/config"
	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/evaluator"
	"github.com/felixgeelhaar/codelab/internal/exercise"
	"github.com/felixgeelhaar/codelab/internal/queue"
	"github.com/felixgeelhaar/codelab/internal/session"
)

// App holds the wired services for one process
type App struct {
	Config   *config.LocalConfig
	Catalog  *exercise.Catalog
	Sessions *session.Service
	Events   *domain.EventDispatcher

	forwarder *queue.Forwarder
	conn      *queue.Connection
	closers   []func() error
	logger    *slog.Logger
}

// Options adjusts what New wires beyond the controller
type Options struct {
	Logger *slog.Logger

	// PublishEvents forwards run events to AMQP when the config enables it
	PublishEvents bool
}

// New loads the catalog and builds the session service described by cfg
func New(ctx context.Context, cfg *config.LocalConfig, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Config: cfg,
		Events: domain.NewEventDispatcher(),
		logger: logger,
	}

	src, closeSrc, err := exercise.OpenSource(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeSrc)

	a.Catalog, err = exercise.LoadCatalog(ctx, src)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog from %s source: %w", cfg.Catalog.Source, err)
	}
	logger.Info("exercise catalog loaded", "source", cfg.Catalog.Source, "exercises", a.Catalog.Len())

	eval := NewEvaluator(cfg.Runner, logger)

	a.Sessions = session.NewService(a.Catalog, eval,
		session.WithEvents(a.Events),
		session.WithRunLimit(cfg.Sessions.RunsPerMinute),
		session.WithLogger(logger),
	)

	if opts.PublishEvents && cfg.Events.Enabled {
		if err := a.attachQueue(ctx, cfg.Events); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// NewEvaluator builds the mock evaluator wrapped in the resilience layer
func NewEvaluator(cfg config.RunnerConfig, logger *slog.Logger) evaluator.Evaluator {
	mock := evaluator.NewMock(evaluator.WithDelay(
		time.Duration(cfg.MinDelayMS)*time.Millisecond,
		time.Duration(cfg.MaxDelayMS)*time.Millisecond,
	))

	return evaluator.NewResilient(mock, evaluator.ResilientConfig{
		Timeout:              time.Duration(cfg.TimeoutSeconds) * time.Second,
		EnableCircuitBreaker: cfg.CircuitBreaker,
		MaxConcurrent:        cfg.MaxConcurrent,
		Logger:               logger,
	})
}

func (a *App) attachQueue(ctx context.Context, cfg config.EventsConfig) error {
	conn, err := queue.NewConnection(cfg.AMQPURL, cfg.Queue, a.logger)
	if err != nil {
		return fmt.Errorf("connect event queue: %w", err)
	}

	pcfg := queue.DefaultProducerConfig()
	pcfg.Logger = a.logger

	a.conn = conn
	a.forwarder = queue.NewForwarder(queue.NewProducer(conn, pcfg), 0, a.logger)
	a.forwarder.Attach(a.Events)
	a.forwarder.Start(ctx)
	return nil
}

// Close ends all sessions, flushes queued events and releases the catalog source
func (a *App) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.Sessions != nil {
		keep(a.Sessions.Close())
	}
	if a.forwarder != nil {
		a.forwarder.Stop()
	}
	if a.conn != nil {
		keep(a.conn.Close())
	}
	for _, c := range a.closers {
		keep(c())
	}
	a.closers = nil
	return firstErr
}
