package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

// Forwarder copies run events from the session dispatcher onto the queue.
// Dispatcher handlers run on the caller's goroutine, so events are buffered
// and published by a single worker; a full buffer drops the event.
type Forwarder struct {
	producer *Producer
	events   chan RunEvent
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// NewForwarder creates a forwarder with room for buffer pending events
func NewForwarder(producer *Producer, buffer int, logger *slog.Logger) *Forwarder {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		producer: producer,
		events:   make(chan RunEvent, buffer),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Attach subscribes the forwarder to the events it publishes
func (f *Forwarder) Attach(d *domain.EventDispatcher) {
	d.Subscribe(domain.EventRunFinished, f.handle)
	d.Subscribe(domain.EventExerciseCompleted, f.handle)
}

func (f *Forwarder) handle(e domain.Event) {
	ev, ok := FromDomain(e)
	if !ok {
		return
	}

	select {
	case <-f.done:
	case f.events <- ev:
	default:
		f.logger.Warn("run event buffer full, dropping event",
			"type", ev.Type,
			"session_id", ev.SessionID)
	}
}

// Start runs the publishing worker until Stop
func (f *Forwarder) Start(ctx context.Context) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case ev := <-f.events:
				f.publish(ctx, ev)
			case <-f.done:
				f.drain()
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// drain publishes what is still buffered, bounded by a short deadline
func (f *Forwarder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case ev := <-f.events:
			f.publish(ctx, ev)
		default:
			return
		}
	}
}

func (f *Forwarder) publish(ctx context.Context, ev RunEvent) {
	if err := f.producer.Publish(ctx, &ev); err != nil {
		f.logger.Error("run event not published", "type", ev.Type, "session_id", ev.SessionID, "error", err)
	}
}

// Stop flushes buffered events and stops the worker
func (f *Forwarder) Stop() {
	f.once.Do(func() { close(f.done) })
	f.wg.Wait()
}
