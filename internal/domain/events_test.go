package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBaseEvent(t *testing.T) {
	sessionID := uuid.New()
	event := NewBaseEvent(EventRunStarted, sessionID)

	t.Run("EventID is unique", func(t *testing.T) {
		if event.EventID() == uuid.Nil {
			t.Error("EventID() should not be nil")
		}
		if other := NewBaseEvent(EventRunStarted, sessionID); other.EventID() == event.EventID() {
			t.Error("event IDs should differ")
		}
	})

	t.Run("EventType", func(t *testing.T) {
		if event.EventType() != EventRunStarted {
			t.Errorf("EventType() = %q, want %q", event.EventType(), EventRunStarted)
		}
	})

	t.Run("OccurredAt is set", func(t *testing.T) {
		if event.OccurredAt().IsZero() {
			t.Error("OccurredAt() should not be zero")
		}
		if event.OccurredAt().After(time.Now()) {
			t.Error("OccurredAt() should not be in the future")
		}
	})

	t.Run("SessionID", func(t *testing.T) {
		if event.SessionID() != sessionID {
			t.Errorf("SessionID() = %v, want %v", event.SessionID(), sessionID)
		}
	})
}

func TestEventDispatcher(t *testing.T) {
	t.Run("Subscribe and Publish", func(t *testing.T) {
		dispatcher := NewEventDispatcher()
		var received Event

		dispatcher.Subscribe(EventRunFinished, func(e Event) {
			received = e
		})

		event := NewRunFinishedEvent(uuid.New(), "hello-world", &RunResult{Success: true, ExecutionTimeMS: 12}, true)
		dispatcher.Publish(event)

		finished, ok := received.(RunFinishedEvent)
		if !ok {
			t.Fatalf("received %T, want RunFinishedEvent", received)
		}
		if !finished.Success || finished.ExecutionTimeMS != 12 || !finished.Current {
			t.Errorf("received = %+v", finished)
		}
	})

	t.Run("type handlers ignore other events", func(t *testing.T) {
		dispatcher := NewEventDispatcher()
		called := false
		dispatcher.Subscribe(EventRunFinished, func(e Event) { called = true })

		dispatcher.Publish(NewResultClearedEvent(uuid.New()))

		if called {
			t.Error("handler for run.finished should not see result.cleared")
		}
	})

	t.Run("SubscribeAll receives everything in order", func(t *testing.T) {
		dispatcher := NewEventDispatcher()
		var types []string
		dispatcher.SubscribeAll(func(e Event) { types = append(types, e.EventType()) })

		id := uuid.New()
		dispatcher.PublishAll([]Event{
			NewSessionStartedEvent(id, "hello-world"),
			NewExerciseSelectedEvent(id, "fizzbuzz"),
			NewExerciseCompletedEvent(id, "fizzbuzz", Progress{Completed: 1, Total: 3}),
		})

		want := []string{EventSessionStarted, EventExerciseSelected, EventExerciseCompleted}
		if len(types) != len(want) {
			t.Fatalf("got %v, want %v", types, want)
		}
		for i := range want {
			if types[i] != want[i] {
				t.Errorf("types[%d] = %q, want %q", i, types[i], want[i])
			}
		}
	})

	t.Run("concurrent publish", func(t *testing.T) {
		dispatcher := NewEventDispatcher()
		var mu sync.Mutex
		count := 0
		dispatcher.SubscribeAll(func(e Event) {
			mu.Lock()
			count++
			mu.Unlock()
		})

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				dispatcher.Publish(NewRunStartedEvent(uuid.New(), "x", "Python", 3))
			}()
		}
		wg.Wait()

		if count != 20 {
			t.Errorf("count = %d, want 20", count)
		}
	})
}

func TestNewSessionEndedEvent(t *testing.T) {
	id := uuid.New()
	e := NewSessionEndedEvent(id, time.Minute, 4, Progress{Completed: 2, Total: 3})

	if e.EventType() != EventSessionEnded {
		t.Errorf("EventType() = %q", e.EventType())
	}
	if e.Runs != 4 || e.Progress.Percent() != 67 {
		t.Errorf("event = %+v", e)
	}
}
