// internal/queue/topology.go
package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/arbiter-gg/arbiter/internal/models"
)

// Queue is the name of a durable queue.
type Queue string

// Exchanges. Reminder queues bind to the reminders exchange with their own
// name as routing key; exhausted send jobs dead-letter into the dlx exchange.
const (
	ExchangeReminders = "arbiter.reminders"
	ExchangeDLX       = "arbiter.dlx"
)

// QueueDead collects dead-lettered send jobs for operator inspection.
const QueueDead Queue = "reminder.dead"

// ScanQueue returns the schedule-scan queue for a lobby kind. Scan and send
// queues are independent per kind so scan cadence never couples to
// notification delivery.
func ScanQueue(kind models.LobbyKind) Queue {
	return Queue("reminder.scan." + string(kind))
}

// SendQueue returns the notification-send queue for a lobby kind.
func SendQueue(kind models.LobbyKind) Queue {
	return Queue("reminder.send." + string(kind))
}

// SetupTopology declares the exchanges, queues and bindings. It is idempotent
// and runs on every worker start.
func SetupTopology(conn *Connection) error {
	ch := conn.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	for _, ex := range []string{ExchangeReminders, ExchangeDLX} {
		err := ch.ExchangeDeclare(ex, "direct", true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex, err)
		}
	}

	dlxArgs := amqp.Table{
		"x-dead-letter-exchange":    ExchangeDLX,
		"x-dead-letter-routing-key": string(QueueDead),
	}

	type binding struct {
		name     Queue
		exchange string
		args     amqp.Table
	}
	queues := []binding{
		{QueueDead, ExchangeDLX, nil},
	}
	// Scan jobs are cheap and rerunnable; a failed scan drops to the DLQ the
	// same way a failed send does, so nothing is ever lost silently.
	for _, kind := range models.Kinds {
		queues = append(queues,
			binding{ScanQueue(kind), ExchangeReminders, dlxArgs},
			binding{SendQueue(kind), ExchangeReminders, dlxArgs},
		)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(string(q.name), true, false, false, false, q.args); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
		if err := ch.QueueBind(string(q.name), string(q.name), q.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q.name, err)
		}
	}
	return nil
}
