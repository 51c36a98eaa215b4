// internal/realtime/events.go
package realtime

// EventType classifies session lifecycle events emitted by the gateway.
type EventType string

const (
	// EventSessionOpen: a multiplayer session opened for a lobby.
	EventSessionOpen EventType = "session_open"

	// EventPlayerJoin: a competitor entered the session.
	EventPlayerJoin EventType = "player_join"

	// EventPlayerLeave: a competitor left the session.
	EventPlayerLeave EventType = "player_leave"

	// EventSessionClosed: the session ended; cached state for it is stale.
	EventSessionClosed EventType = "session_closed"

	// EventReset: emitted locally when the gateway connection drops.
	// Everything built from the event stream is stale and must be discarded;
	// the gateway replays current session state after it resubscribes.
	EventReset EventType = "reset"
)

// Event is one session lifecycle notification. LobbyID is only set on
// session_open frames; join/leave frames carry the competitor identity.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	LobbyID   string    `json:"lobby_id,omitempty"`

	CompetitorID string `json:"competitor_id,omitempty"`
	Handle       string `json:"handle,omitempty"`
	MentionID    string `json:"mention_id,omitempty"`
}
