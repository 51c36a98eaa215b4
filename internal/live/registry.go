// internal/live/registry.go
package live

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arbiter-gg/arbiter/internal/models"
	"github.com/arbiter-gg/arbiter/internal/realtime"
)

// Registry maps live session ids to their in-memory LiveLobby. It is
// process-local: cross-process correctness still rests on the store's
// conditional updates, the registry only answers presence questions without
// re-querying the protocol.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*LiveLobby
}

// NewRegistry returns an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*LiveLobby),
	}
}

// GetOrCreate returns the LiveLobby for sessionID, creating it on first
// observation. A lobby id is recorded the first time a caller knows it.
func (r *Registry) GetOrCreate(sessionID string, lobbyID uuid.UUID) *LiveLobby {
	r.mu.Lock()
	defer r.mu.Unlock()
	ll, ok := r.sessions[sessionID]
	if !ok {
		ll = newLiveLobby(sessionID, lobbyID)
		r.sessions[sessionID] = ll
	} else if ll.LobbyID == uuid.Nil && lobbyID != uuid.Nil {
		ll.LobbyID = lobbyID
	}
	return ll
}

// Get retrieves the LiveLobby for a session if one has been observed.
func (r *Registry) Get(sessionID string) (*LiveLobby, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ll, ok := r.sessions[sessionID]
	return ll, ok
}

// Remove evicts a session's cached state, e.g. when the session ends.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Reset discards every cached session. Called when the event stream feeding
// the registry was interrupted: presence answers built from a dead stream
// must not survive it. State is rebuilt from the replay that follows a
// resubscribe.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*LiveLobby)
}

// Len returns the number of live sessions currently cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Apply folds one gateway event into the registry.
func (r *Registry) Apply(ev realtime.Event) {
	switch ev.Type {
	case realtime.EventSessionOpen:
		lobbyID, _ := uuid.Parse(ev.LobbyID)
		r.GetOrCreate(ev.SessionID, lobbyID)
	case realtime.EventPlayerJoin:
		ll := r.GetOrCreate(ev.SessionID, uuid.Nil)
		ll.AddParticipant(models.Participant{
			CompetitorID: ev.CompetitorID,
			Handle:       ev.Handle,
			MentionID:    ev.MentionID,
		})
	case realtime.EventPlayerLeave:
		if ll, ok := r.Get(ev.SessionID); ok {
			ll.RemoveParticipant(ev.CompetitorID)
		}
	case realtime.EventSessionClosed:
		r.Remove(ev.SessionID)
	case realtime.EventReset:
		r.Reset()
	}
}
