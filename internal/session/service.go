package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/evaluator"
	"github.com/felixgeelhaar/codelab/internal/exercise"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/google/uuid"
)

// Service is the page controller. It owns every live session and mediates
// between the selector, the editor, the evaluator and the output panel.
type Service struct {
	catalog   *exercise.Catalog
	evaluator evaluator.Evaluator
	store     Store
	events    *domain.EventDispatcher
	limiter   ratelimit.RateLimiter
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Service
type Option func(*Service)

// WithStore replaces the default in-memory store
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithEvents publishes session events on d
func WithEvents(d *domain.EventDispatcher) Option {
	return func(s *Service) { s.events = d }
}

// WithRunLimit caps runs per session per minute (0 disables)
func WithRunLimit(perMinute int) Option {
	return func(s *Service) {
		if perMinute <= 0 {
			return
		}
		s.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     perMinute,
			Burst:    perMinute,
			Interval: time.Minute,
		})
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a page controller over catalog using eval for runs
func NewService(catalog *exercise.Catalog, eval evaluator.Evaluator, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		catalog:   catalog,
		evaluator: eval,
		store:     NewMemoryStore(),
		events:    domain.NewEventDispatcher(),
		logger:    slog.Default(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the dispatcher session events are published on
func (s *Service) Events() *domain.EventDispatcher {
	return s.events
}

// Catalog returns the exercise catalog
func (s *Service) Catalog() *exercise.Catalog {
	return s.catalog
}

// CreateRequest contains data for creating a session
type CreateRequest struct {
	// ExerciseID is selected initially; empty selects the first exercise
	ExerciseID string `json:"exercise_id,omitempty"`
}

// Create starts a new page session over a fresh copy of the catalog
func (s *Service) Create(ctx context.Context, req CreateRequest) (State, error) {
	list := s.catalog.List()
	sess := New(list)

	exerciseID := req.ExerciseID
	if exerciseID == "" && len(list) > 0 {
		exerciseID = list[0].ID
	}
	if exerciseID != "" {
		if err := sess.Select(exerciseID); err != nil {
			return State{}, err
		}
	}

	if err := s.store.Save(sess); err != nil {
		return State{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("session started", "session_id", sess.ID, "exercise_id", exerciseID)
	s.events.Publish(domain.NewSessionStartedEvent(sess.ID, exerciseID))

	return sess.Snapshot(), nil
}

// Get returns the current state of a session
func (s *Service) Get(ctx context.Context, id uuid.UUID) (State, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return State{}, err
	}
	return sess.Snapshot(), nil
}

// List returns the state of every live session
func (s *Service) List(ctx context.Context) []State {
	sessions := s.store.List()
	out := make([]State, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.Snapshot())
	}
	return out
}

// Delete ends a session
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.ended(sess, "deleted")
	return nil
}

// Select switches the session to exerciseID and clears the current result,
// even while a run is pending.
func (s *Service) Select(ctx context.Context, id uuid.UUID, exerciseID string) (State, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return State{}, err
	}
	if err := sess.Select(exerciseID); err != nil {
		return State{}, err
	}

	s.events.Publish(domain.NewExerciseSelectedEvent(id, exerciseID))
	return sess.Snapshot(), nil
}

// UpdateCode stores the editor buffer without running it
func (s *Service) UpdateCode(ctx context.Context, id uuid.UUID, code string) (State, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return State{}, err
	}
	sess.SetCode(code)
	return sess.Snapshot(), nil
}

// Reset restores the starter code and clears the result. Completion flags
// are untouched.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (State, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return State{}, err
	}
	sess.Reset()

	s.events.Publish(domain.NewResultClearedEvent(id))
	return sess.Snapshot(), nil
}

// Run evaluates code against the selected exercise and waits for the
// result. With nothing selected it returns the unchanged state. A second
// run while one is pending fails with ErrRunInProgress.
func (s *Service) Run(ctx context.Context, id uuid.UUID, code string) (State, error) {
	sess, p, err := s.begin(ctx, id, code)
	if err != nil || p == nil {
		return s.stateOf(sess), err
	}

	// The run outlives a disconnected caller so the running flag always clears.
	s.complete(context.WithoutCancel(ctx), sess, p)
	return sess.Snapshot(), nil
}

// StartRun is Run without waiting: it returns the running state and
// finishes in the background. Completion is announced on Events.
func (s *Service) StartRun(ctx context.Context, id uuid.UUID, code string) (State, error) {
	sess, p, err := s.begin(ctx, id, code)
	if err != nil || p == nil {
		return s.stateOf(sess), err
	}

	snapshot := sess.Snapshot()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.complete(s.ctx, sess, p)
	}()

	return snapshot, nil
}

func (s *Service) begin(ctx context.Context, id uuid.UUID, code string) (*Session, *Pending, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, nil, err
	}

	var admit func() bool
	if s.limiter != nil {
		admit = func() bool { return s.limiter.Allow(ctx, id.String()) }
	}

	p, err := sess.BeginRunIf(code, admit)
	if err != nil {
		return sess, nil, err
	}
	if p == nil {
		return sess, nil, nil
	}

	s.logger.Debug("run started", "session_id", id, "exercise_id", p.ExerciseID, "code_bytes", len(code))
	s.events.Publish(domain.NewRunStartedEvent(id, p.ExerciseID, p.Language, len(code)))
	return sess, p, nil
}

func (s *Service) complete(ctx context.Context, sess *Session, p *Pending) {
	result := s.evaluate(ctx, sess.ID, p)

	current, completed := sess.FinishRun(p, result)

	s.logger.Info("run finished",
		"session_id", sess.ID,
		"exercise_id", p.ExerciseID,
		"success", result.Success,
		"failure", result.Failure,
		"execution_time_ms", result.ExecutionTimeMS,
		"current", current)

	s.events.Publish(domain.NewRunFinishedEvent(sess.ID, p.ExerciseID, result, current))
	if completed {
		s.events.Publish(domain.NewExerciseCompletedEvent(sess.ID, p.ExerciseID, sess.Progress()))
	}
}

// evaluate never fails: evaluator errors and panics become the generic
// execution failure.
func (s *Service) evaluate(ctx context.Context, id uuid.UUID, p *Pending) (result *domain.RunResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("evaluator panic", "session_id", id, "exercise_id", p.ExerciseID, "panic", rec)
			result = domain.ExecutionFailed()
		}
	}()

	res, err := s.evaluator.Evaluate(ctx, evaluator.Submission{
		Code:           p.Code,
		Language:       p.Language,
		ExpectedOutput: p.ExpectedOutput,
	})
	if err != nil {
		s.logger.Warn("evaluator failed", "session_id", id, "exercise_id", p.ExerciseID, "error", err)
		return domain.ExecutionFailed()
	}
	if res == nil {
		s.logger.Warn("evaluator returned no result", "session_id", id, "exercise_id", p.ExerciseID)
		return domain.ExecutionFailed()
	}
	return res
}

// Sweep ends sessions idle for longer than maxIdle and returns how many
func (s *Service) Sweep(ctx context.Context, maxIdle time.Duration) int {
	removed := 0
	for _, sess := range Idle(s.store, time.Now().Add(-maxIdle)) {
		if err := s.store.Delete(sess.ID); err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				s.logger.Warn("sweep delete failed", "session_id", sess.ID, "error", err)
			}
			continue
		}
		s.ended(sess, "idle")
		removed++
	}
	return removed
}

// Close cancels background runs and waits for them to finish
func (s *Service) Close() error {
	s.cancel()
	s.wg.Wait()
	if s.limiter != nil {
		return s.limiter.Close()
	}
	return nil
}

func (s *Service) ended(sess *Session, reason string) {
	st := sess.Snapshot()
	duration := time.Since(st.CreatedAt)
	s.logger.Info("session ended",
		"session_id", sess.ID,
		"reason", reason,
		"runs", st.Runs,
		"completed", st.Progress.Completed,
		"duration", duration)
	s.events.Publish(domain.NewSessionEndedEvent(sess.ID, duration, st.Runs, st.Progress))
}

func (s *Service) stateOf(sess *Session) State {
	if sess == nil {
		return State{}
	}
	return sess.Snapshot()
}
