package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Event Interface and Base Event
// -----------------------------------------------------------------------------

// Event represents a domain event
type Event interface {
	// EventID returns the unique identifier for this event
	EventID() uuid.UUID
	// EventType returns the type name of this event
	EventType() string
	// OccurredAt returns when this event occurred
	OccurredAt() time.Time
	// SessionID returns the page session that produced this event
	SessionID() uuid.UUID
}

// Event type names
const (
	EventSessionStarted    = "session.started"
	EventSessionEnded      = "session.ended"
	EventExerciseSelected  = "exercise.selected"
	EventExerciseCompleted = "exercise.completed"
	EventRunStarted        = "run.started"
	EventRunFinished       = "run.finished"
	EventResultCleared     = "result.cleared"
)

// BaseEvent provides common event fields
type BaseEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Session   uuid.UUID `json:"session_id"`
}

// NewBaseEvent creates a new BaseEvent
func NewBaseEvent(eventType string, sessionID uuid.UUID) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		Session:   sessionID,
	}
}

func (e BaseEvent) EventID() uuid.UUID    { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) SessionID() uuid.UUID  { return e.Session }

// -----------------------------------------------------------------------------
// Event Handler and Dispatcher
// -----------------------------------------------------------------------------

// EventHandler processes domain events. Handlers run on the publishing
// goroutine and must not block.
type EventHandler func(event Event)

// EventDispatcher manages event subscriptions and publishing
type EventDispatcher struct {
	mu          sync.RWMutex
	handlers    map[string][]EventHandler
	allHandlers []EventHandler
}

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]EventHandler),
	}
}

// Subscribe registers a handler for a specific event type
func (d *EventDispatcher) Subscribe(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (d *EventDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.allHandlers = append(d.allHandlers, handler)
}

// Publish dispatches an event to all registered handlers
func (d *EventDispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, h := range d.handlers[event.EventType()] {
		h(event)
	}
	for _, h := range d.allHandlers {
		h(event)
	}
}

// PublishAll dispatches multiple events in order
func (d *EventDispatcher) PublishAll(events []Event) {
	for _, event := range events {
		d.Publish(event)
	}
}

// -----------------------------------------------------------------------------
// Session Events
// -----------------------------------------------------------------------------

// SessionStartedEvent is published when a page session is created
type SessionStartedEvent struct {
	BaseEvent
	ExerciseID string `json:"exercise_id,omitempty"`
}

// NewSessionStartedEvent creates a new session started event
func NewSessionStartedEvent(sessionID uuid.UUID, exerciseID string) SessionStartedEvent {
	return SessionStartedEvent{
		BaseEvent:  NewBaseEvent(EventSessionStarted, sessionID),
		ExerciseID: exerciseID,
	}
}

// SessionEndedEvent is published when a session is deleted or expires
type SessionEndedEvent struct {
	BaseEvent
	Duration time.Duration `json:"duration"`
	Runs     int           `json:"runs"`
	Progress Progress      `json:"progress"`
}

// NewSessionEndedEvent creates a new session ended event
func NewSessionEndedEvent(sessionID uuid.UUID, duration time.Duration, runs int, progress Progress) SessionEndedEvent {
	return SessionEndedEvent{
		BaseEvent: NewBaseEvent(EventSessionEnded, sessionID),
		Duration:  duration,
		Runs:      runs,
		Progress:  progress,
	}
}

// ExerciseSelectedEvent is published when the learner switches exercise
type ExerciseSelectedEvent struct {
	BaseEvent
	ExerciseID string `json:"exercise_id"`
}

// NewExerciseSelectedEvent creates a new exercise selected event
func NewExerciseSelectedEvent(sessionID uuid.UUID, exerciseID string) ExerciseSelectedEvent {
	return ExerciseSelectedEvent{
		BaseEvent:  NewBaseEvent(EventExerciseSelected, sessionID),
		ExerciseID: exerciseID,
	}
}

// ExerciseCompletedEvent is published the first time an exercise is passed
type ExerciseCompletedEvent struct {
	BaseEvent
	ExerciseID string   `json:"exercise_id"`
	Progress   Progress `json:"progress"`
}

// NewExerciseCompletedEvent creates a new exercise completed event
func NewExerciseCompletedEvent(sessionID uuid.UUID, exerciseID string, progress Progress) ExerciseCompletedEvent {
	return ExerciseCompletedEvent{
		BaseEvent:  NewBaseEvent(EventExerciseCompleted, sessionID),
		ExerciseID: exerciseID,
		Progress:   progress,
	}
}

// ResultClearedEvent is published on reset
type ResultClearedEvent struct {
	BaseEvent
}

// NewResultClearedEvent creates a new result cleared event
func NewResultClearedEvent(sessionID uuid.UUID) ResultClearedEvent {
	return ResultClearedEvent{BaseEvent: NewBaseEvent(EventResultCleared, sessionID)}
}

// -----------------------------------------------------------------------------
// Run Events
// -----------------------------------------------------------------------------

// RunStartedEvent is published when code is submitted
type RunStartedEvent struct {
	BaseEvent
	ExerciseID string `json:"exercise_id"`
	Language   string `json:"language"`
	CodeBytes  int    `json:"code_bytes"`
}

// NewRunStartedEvent creates a new run started event
func NewRunStartedEvent(sessionID uuid.UUID, exerciseID, language string, codeBytes int) RunStartedEvent {
	return RunStartedEvent{
		BaseEvent:  NewBaseEvent(EventRunStarted, sessionID),
		ExerciseID: exerciseID,
		Language:   language,
		CodeBytes:  codeBytes,
	}
}

// RunFinishedEvent is published when the evaluator resolves. Current is
// false when the learner moved on before the result arrived.
type RunFinishedEvent struct {
	BaseEvent
	ExerciseID      string      `json:"exercise_id"`
	Success         bool        `json:"success"`
	ExecutionTimeMS int         `json:"execution_time,omitempty"`
	Failure         FailureKind `json:"failure,omitempty"`
	Current         bool        `json:"current"`
}

// NewRunFinishedEvent creates a new run finished event
func NewRunFinishedEvent(sessionID uuid.UUID, exerciseID string, result *RunResult, current bool) RunFinishedEvent {
	return RunFinishedEvent{
		BaseEvent:       NewBaseEvent(EventRunFinished, sessionID),
		ExerciseID:      exerciseID,
		Success:         result.Success,
		ExecutionTimeMS: result.ExecutionTimeMS,
		Failure:         result.Failure,
		Current:         current,
	}
}
