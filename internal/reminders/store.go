// internal/reminders/store.go
package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arbiter-gg/arbiter/internal/models"
	"github.com/arbiter-gg/arbiter/internal/queue"
)

// Store is the slice of the lobby store the reminder jobs touch. The
// production implementation is database.LobbyStore; tests use in-memory fakes
// with the same compare-and-swap semantics.
type Store interface {
	// FindDueReminders returns pending lobbies of the kind scheduled inside
	// (from, to), rosters included.
	FindDueReminders(ctx context.Context, kind models.LobbyKind, from, to time.Time) ([]models.Lobby, error)

	// MarkReminderScheduled conditionally flips pending -> scheduled and
	// reports whether this caller won the transition.
	MarkReminderScheduled(ctx context.Context, lobbyID uuid.UUID) (bool, error)

	// FinishReminder conditionally records a terminal outcome from scheduled.
	FinishReminder(ctx context.Context, lobbyID uuid.UUID, status models.ReminderStatus) (bool, error)
}

// Enqueuer is the slice of the job queue the scan job needs.
type Enqueuer interface {
	EnqueueBulk(ctx context.Context, q queue.Queue, payloads []any) error
}

// Messenger delivers one chat message to a destination channel.
type Messenger interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// Ledger tracks per-destination deliveries across send-job retries.
type Ledger interface {
	Delivered(ctx context.Context, lobbyID uuid.UUID, channelID string) (bool, error)
	MarkDelivered(ctx context.Context, lobbyID uuid.UUID, channelID string) error
}
