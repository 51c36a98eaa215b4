// internal/queue/consumer.go
package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Handler processes one delivery body. A nil return acks the message; a
// non-nil return dead-letters it, unless the context was cancelled mid-flight
// in which case the message is requeued untouched.
type Handler func(ctx context.Context, body []byte) error

// Consumer consumes one queue with manual acks and a bounded prefetch. Each
// consumer opens its own channel so its prefetch is independent of every
// other consumer on the connection. It survives broker reconnects by
// restarting its delivery loop.
type Consumer struct {
	conn     *Connection
	logger   *logrus.Logger
	queue    Queue
	handler  Handler
	prefetch int
}

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	Queue    Queue
	Handler  Handler
	Prefetch int // defaults to 1
}

// NewConsumer creates a Consumer; call Start to begin draining the queue.
func NewConsumer(conn *Connection, logger *logrus.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	return &Consumer{
		conn:     conn,
		logger:   logger,
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		prefetch: prefetch,
	}
}

// Start blocks consuming the queue until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ch, deliveries, err := c.setupConsume()
		if err != nil {
			c.logger.WithField("queue", c.queue).Warnf("consumer setup failed: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				continue
			}
		}

		c.logger.WithField("queue", c.queue).Info("consumer started")

		err = c.drain(ctx, deliveries)
		ch.Close()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.WithField("queue", c.queue).Warn("deliveries channel closed, waiting for reconnect")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				continue
			}
		}
	}
}

// setupConsume opens the consumer's own channel and starts the delivery
// stream. The channel stays open until drain returns.
func (c *Consumer) setupConsume() (*amqp.Channel, <-chan amqp.Delivery, error) {
	ch, err := c.conn.NewChannel()
	if err != nil {
		return nil, nil, err
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(string(c.queue), "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("consume: %w", err)
	}
	return ch, deliveries, nil
}

func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}
			c.handleDelivery(ctx, raw)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, raw amqp.Delivery) {
	err := c.handler(ctx, raw.Body)
	if err == nil {
		raw.Ack(false)
		return
	}

	// Cancelled mid-flight: requeue untouched so the job is redelivered with
	// no state guessed. TTL-expired jobs never reach the handler at all.
	if ctx.Err() != nil {
		raw.Nack(false, true)
		return
	}

	c.logger.WithFields(logrus.Fields{
		"queue":      c.queue,
		"message_id": raw.MessageId,
	}).Warnf("handler failed, dead-lettering: %v", err)
	raw.Nack(false, false)
}
