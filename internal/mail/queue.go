package mail

import (
	"context"
	"encoding/json"
	"fmt"
)

// Queue is the broker queue outgoing mail is published to.
const Queue = "mail_jobs"

// Publisher publishes a JSON document to a named queue.
type Publisher interface {
	PublishJSON(queue string, v interface{}) error
}

// QueueMailer hands messages to the worker through the broker.
type QueueMailer struct {
	publisher Publisher
}

func NewQueueMailer(p Publisher) *QueueMailer {
	return &QueueMailer{publisher: p}
}

func (q *QueueMailer) Send(_ context.Context, msg Message) error {
	if err := q.publisher.PublishJSON(Queue, msg); err != nil {
		return fmt.Errorf("failed to enqueue %s mail: %w", msg.Kind, err)
	}
	return nil
}

// Deliver returns a queue handler that decodes messages and sends them
// through m.
func Deliver(m Mailer) func(ctx context.Context, body []byte) error {
	return func(ctx context.Context, body []byte) error {
		var msg Message
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("invalid mail message: %w", err)
		}
		return m.Send(ctx, msg)
	}
}
