// internal/queue/consumer_test.go
package queue

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewConsumerPrefetchDefault(t *testing.T) {
	c := NewConsumer(nil, logrus.New(), ConsumerConfig{
		Queue:   QueueDead,
		Handler: func(ctx context.Context, body []byte) error { return nil },
	})
	if c.prefetch != 1 {
		t.Fatalf("default prefetch = %d, want 1", c.prefetch)
	}
}

func TestNewConsumerPrefetchConfigured(t *testing.T) {
	c := NewConsumer(nil, logrus.New(), ConsumerConfig{
		Queue:    QueueDead,
		Handler:  func(ctx context.Context, body []byte) error { return nil },
		Prefetch: 4,
	})
	if c.prefetch != 4 {
		t.Fatalf("prefetch = %d, want 4", c.prefetch)
	}
}
