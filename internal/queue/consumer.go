package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventHandler receives one decoded run event
type EventHandler func(ctx context.Context, ev RunEvent) error

// Consumer reads run events off the queue
type Consumer struct {
	conn       *Connection
	handler    EventHandler
	prefetch   int
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewConsumer creates a new queue consumer
func NewConsumer(conn *Connection, handler EventHandler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		conn:     conn,
		handler:  handler,
		prefetch: 16,
		logger:   logger,
	}
}

// Start begins consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancelFunc = context.WithCancel(ctx)

	ch := c.conn.Channel()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.conn.Queue(),
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consuming run events", "queue", c.conn.Queue())

	c.wg.Add(1)
	go c.consume(ctx, msgs)
	return nil
}

func (c *Consumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Info("message channel closed")
				return
			}
			c.process(ctx, msg)
		}
	}
}

// process acks handled events and rejects malformed ones without requeue
func (c *Consumer) process(ctx context.Context, msg amqp.Delivery) {
	ev, err := decodeEvent(msg.Body)
	if err != nil {
		c.logger.Error("failed to decode run event", "error", err)
		_ = msg.Reject(false)
		return
	}

	if err := c.handler(ctx, ev); err != nil {
		c.logger.Warn("run event handler failed", "event_id", ev.ID, "error", err)
		_ = msg.Nack(false, true)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack message", "event_id", ev.ID, "error", err)
	}
}

func decodeEvent(body []byte) (RunEvent, error) {
	var ev RunEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return RunEvent{}, fmt.Errorf("unmarshal run event: %w", err)
	}
	if ev.Type == "" {
		return RunEvent{}, fmt.Errorf("run event has no type")
	}
	return ev, nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
	c.logger.Info("consumer stopped")
}
