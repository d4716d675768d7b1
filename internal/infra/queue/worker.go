package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Notifier delivers the emails triggered by task events.
type Notifier interface {
	SendTaskAssigned(to, name, title string, due time.Time) error
	SendTaskReminder(to, name, title string, due time.Time) error
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier Notifier
}

func NewWorker(ch *amqp.Channel, notifier Notifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

// Start consumes queueName with manual ack until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf("📥 worker waiting on queue '%s'", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if w.Process(d.Body) {
				d.Ack(false)
			} else {
				// rejected messages go to the dead-letter queue
				d.Nack(false, false)
			}
		}
	}
}

// Process handles one message body and reports whether it should be acked.
func (w *Worker) Process(body []byte) bool {
	var event entity.ActivityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("❌ [WORKER] invalid JSON: %s", err)
		return false
	}

	var send func(to, name, title string, due time.Time) error
	switch event.Type {
	case entity.EventTaskAssigned:
		send = w.Notifier.SendTaskAssigned
	case entity.EventTaskReminder:
		send = w.Notifier.SendTaskReminder
	default:
		log.Printf("📝 [WORKER] %s %s by %s", event.Type, event.EntityID, event.ActorID)
		return true
	}

	if event.Email == "" {
		log.Printf("⚠️ [WORKER] %s for task %s has no recipient email, skipping", event.Type, event.EntityID)
		return true
	}

	if err := send(event.Email, event.Name, event.Title, event.DueDate); err != nil {
		log.Printf("❌ [WORKER] %s email to %s failed: %s", event.Type, event.Recipient, err)
		return false
	}

	log.Printf("✅ [WORKER] %s email sent for task %s", event.Type, event.EntityID)
	return true
}
