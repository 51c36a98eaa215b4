// internal/queue/publisher.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher enqueues jobs as persistent JSON messages.
type Publisher struct {
	conn   *Connection
	logger *logrus.Logger
}

// NewPublisher creates a Publisher over an established connection.
func NewPublisher(conn *Connection, logger *logrus.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Enqueue publishes one job to the named queue. Messages are persistent so
// they survive a broker restart; delivery is at-least-once.
func (p *Publisher) Enqueue(ctx context.Context, q Queue, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ch := p.conn.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	msgID := uuid.New().String()
	err = ch.PublishWithContext(ctx,
		ExchangeReminders,
		string(q), // direct exchange, routing key == queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msgID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", q, err)
	}

	p.logger.WithFields(logrus.Fields{
		"queue":      q,
		"message_id": msgID,
	}).Debug("enqueued job")
	return nil
}

// EnqueueBulk publishes a batch of jobs to the named queue, stopping at the
// first failure so the caller knows the tail was never enqueued.
func (p *Publisher) EnqueueBulk(ctx context.Context, q Queue, payloads []any) error {
	for i, payload := range payloads {
		if err := p.Enqueue(ctx, q, payload); err != nil {
			return fmt.Errorf("enqueue %d/%d: %w", i+1, len(payloads), err)
		}
	}
	return nil
}
