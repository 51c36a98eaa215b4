// internal/models/lobby.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LobbyKind distinguishes the two persisted lobby pipelines. Both kinds share
// the same shape and the same reminder lifecycle; they differ only in which
// queues and lookahead windows serve them.
type LobbyKind string

const (
	KindQualifier LobbyKind = "qualifier"
	KindTryout    LobbyKind = "tryout"
)

// Kinds lists every lobby kind, in the order workers register their queues.
var Kinds = []LobbyKind{KindQualifier, KindTryout}

// Lobby represents a row in the lobbies table: one scheduled match instance.
//
// RefereeID is nil until a referee claims the lobby; at most one referee may
// hold the claim at a time (enforced by a conditional update, not by this
// struct). SessionID is nil until the real-time multiplayer session opens.
type Lobby struct {
	ID       uuid.UUID `json:"id"`
	Kind     LobbyKind `json:"kind"`
	Name     string    `json:"name"`
	Schedule time.Time `json:"schedule"` // always UTC

	ReminderStatus ReminderStatus `json:"reminder_status"`

	RefereeID *uuid.UUID `json:"referee_id,omitempty"`
	SessionID *string    `json:"session_id,omitempty"`

	// AnnounceMessageID is the chat-platform message carrying the claim/invite
	// buttons; interaction events reference the lobby through it.
	AnnounceMessageID string `json:"announce_message_id,omitempty"`

	// StaffChannelID and PlayerChannelID are the chat-platform destinations
	// reminder notifications are delivered to.
	StaffChannelID  string `json:"staff_channel_id"`
	PlayerChannelID string `json:"player_channel_id"`

	Participants []Participant `json:"participants,omitempty"`
}

// Participant is one roster entry of a lobby. Handle is the competitor's
// in-game name used by the multiplayer protocol; MentionID is the
// chat-platform identity used when pinging them.
type Participant struct {
	CompetitorID string `json:"competitor_id"`
	Handle       string `json:"handle"`
	MentionID    string `json:"mention_id"`
}

// Claimed reports whether a referee currently holds this lobby.
func (l *Lobby) Claimed() bool {
	return l.RefereeID != nil
}

// ClaimedBy reports whether userID holds the referee claim.
func (l *Lobby) ClaimedBy(userID uuid.UUID) bool {
	return l.RefereeID != nil && *l.RefereeID == userID
}
