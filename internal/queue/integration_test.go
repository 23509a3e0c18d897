//go:build integration

package queue

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

func setupRabbitMQ(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	url, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("failed to get AMQP URL: %v", err)
	}
	return url
}

func TestIntegration_PublishAndConsume(t *testing.T) {
	url := setupRabbitMQ(t)

	conn, err := NewConnection(url, "codelab.test", quietLogger())
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	defer conn.Close()

	if !conn.IsConnected() {
		t.Fatal("IsConnected() = false")
	}

	received := make(chan RunEvent, 1)
	consumer := NewConsumer(conn, func(ctx context.Context, ev RunEvent) error {
		received <- ev
		return nil
	}, quietLogger())
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer consumer.Stop()

	d := domain.NewEventDispatcher()
	fwd := NewForwarder(NewProducer(conn, DefaultProducerConfig()), 8, quietLogger())
	fwd.Attach(d)
	fwd.Start(context.Background())
	defer fwd.Stop()

	sid := uuid.New()
	d.Publish(domain.NewRunFinishedEvent(sid, "hello-world", &domain.RunResult{Success: true, ExecutionTimeMS: 42}, true))

	select {
	case ev := <-received:
		if ev.SessionID != sid || ev.ExerciseID != "hello-world" || !ev.Success || ev.ExecutionTimeMS != 42 {
			t.Errorf("received = %+v", ev)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for run event")
	}
}
