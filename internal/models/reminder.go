// internal/models/reminder.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderStatus is the lifecycle marker that prevents duplicate reminder
// scheduling and delivery for a lobby.
//
// It only moves forward: Pending -> Scheduled -> Sent | Failed. The single
// path back to Pending is an explicit reschedule of the lobby.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderScheduled ReminderStatus = "scheduled"
	ReminderSent      ReminderStatus = "sent"
	ReminderFailed    ReminderStatus = "failed"
)

// CanTransition reports whether moving from s to next is a legal forward
// transition. Resetting to Pending via reschedule is not covered here; only
// the reschedule operation may do that.
func (s ReminderStatus) CanTransition(next ReminderStatus) bool {
	switch s {
	case ReminderPending:
		return next == ReminderScheduled
	case ReminderScheduled:
		return next == ReminderSent || next == ReminderFailed
	default:
		return false
	}
}

// Terminal reports whether the status is an end state.
func (s ReminderStatus) Terminal() bool {
	return s == ReminderSent || s == ReminderFailed
}

// ReminderPayload is the denormalized snapshot a scan takes of a lobby when
// enqueueing its send job. It is immutable once enqueued: the send job never
// re-reads schedule-sensitive fields from the store, only the lobby id (to
// mark the final status).
type ReminderPayload struct {
	LobbyID   uuid.UUID `json:"lobby_id"`
	Kind      LobbyKind `json:"kind"`
	LobbyName string    `json:"lobby_name"`
	Schedule  time.Time `json:"schedule"`

	StaffChannelID  string `json:"staff_channel_id"`
	PlayerChannelID string `json:"player_channel_id"`

	// RefereeMentionID is empty when the lobby is unclaimed at scan time; the
	// staff notification then flags the lobby as needing a referee.
	RefereeMentionID   string   `json:"referee_mention_id,omitempty"`
	ParticipantMention []string `json:"participant_mentions"`
}
