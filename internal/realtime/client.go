// internal/realtime/client.go
package realtime

import "context"

// Channel is one multiplayer session's command surface.
type Channel interface {
	// SendMessage posts a chat line into the session channel.
	SendMessage(ctx context.Context, text string) error

	// InvitePlayer invites a competitor, by in-game handle, into the session.
	InvitePlayer(ctx context.Context, handle string) error

	// GrantReferee gives the handle host-level referee privileges in the
	// session. Duplicate grants are harmless; the gateway treats them as
	// no-ops.
	GrantReferee(ctx context.Context, handle string) error

	// RevokeReferee removes previously granted referee privileges.
	RevokeReferee(ctx context.Context, handle string) error
}

// SessionClient is the real-time multiplayer protocol surface the handlers
// and jobs depend on. The production implementation is the WebSocket Gateway;
// tests substitute fakes.
type SessionClient interface {
	// GetChannel looks up the command channel for a session id.
	GetChannel(ctx context.Context, sessionID string) (Channel, error)

	// Events streams session lifecycle events (join/leave/open/closed) until
	// the client shuts down.
	Events() <-chan Event
}
