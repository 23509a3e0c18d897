package queue

import (
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/google/uuid"
)

// RunEvent is the message published for every finished run and every
// newly completed exercise
type RunEvent struct {
	ID              uuid.UUID `json:"id"`
	Type            string    `json:"type"`
	SessionID       uuid.UUID `json:"session_id"`
	ExerciseID      string    `json:"exercise_id"`
	Success         bool      `json:"success"`
	Failure         string    `json:"failure,omitempty"`
	ExecutionTimeMS int       `json:"execution_time_ms,omitempty"`
	Current         bool      `json:"current"`
	Completed       int       `json:"completed,omitempty"`
	Total           int       `json:"total,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// FromDomain converts the session events that are forwarded to the queue.
// Other events report false.
func FromDomain(e domain.Event) (RunEvent, bool) {
	ev := RunEvent{
		ID:         e.EventID(),
		Type:       e.EventType(),
		SessionID:  e.SessionID(),
		OccurredAt: e.OccurredAt(),
	}

	switch e := e.(type) {
	case domain.RunFinishedEvent:
		ev.ExerciseID = e.ExerciseID
		ev.Success = e.Success
		ev.Failure = string(e.Failure)
		ev.ExecutionTimeMS = e.ExecutionTimeMS
		ev.Current = e.Current
	case domain.ExerciseCompletedEvent:
		ev.ExerciseID = e.ExerciseID
		ev.Success = true
		ev.Current = true
		ev.Completed = e.Progress.Completed
		ev.Total = e.Progress.Total
	default:
		return RunEvent{}, false
	}
	return ev, true
}
