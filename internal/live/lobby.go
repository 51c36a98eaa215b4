// internal/live/lobby.go
package live

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arbiter-gg/arbiter/internal/models"
)

// LiveLobby is the in-memory view of one running multiplayer session: who is
// physically present right now, and which referees have been added. It is a
// read-through cache over the real-time protocol events, never the source of
// truth for persisted claim ownership.
type LiveLobby struct {
	mu sync.Mutex

	SessionID string
	LobbyID   uuid.UUID

	// participants is ordered by join time; membership is keyed by the stable
	// competitor identifier, so a rejoin does not duplicate an entry.
	participants []models.Participant
	referees     map[uuid.UUID]string // userID -> in-game handle
}

func newLiveLobby(sessionID string, lobbyID uuid.UUID) *LiveLobby {
	return &LiveLobby{
		SessionID: sessionID,
		LobbyID:   lobbyID,
		referees:  make(map[uuid.UUID]string),
	}
}

// AddParticipant records a competitor joining the session. Re-joins are
// idempotent: the original seat order is kept.
func (ll *LiveLobby) AddParticipant(p models.Participant) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	for _, cur := range ll.participants {
		if cur.CompetitorID == p.CompetitorID {
			return
		}
	}
	ll.participants = append(ll.participants, p)
}

// RemoveParticipant records a competitor leaving the session.
func (ll *LiveLobby) RemoveParticipant(competitorID string) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	for i, cur := range ll.participants {
		if cur.CompetitorID == competitorID {
			ll.participants = append(ll.participants[:i], ll.participants[i+1:]...)
			return
		}
	}
}

// Participant returns the present participant with the given competitor id.
func (ll *LiveLobby) Participant(competitorID string) (models.Participant, bool) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	for _, cur := range ll.participants {
		if cur.CompetitorID == competitorID {
			return cur, true
		}
	}
	return models.Participant{}, false
}

// Participants returns a copy of the present participants in join order.
func (ll *LiveLobby) Participants() []models.Participant {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	out := make([]models.Participant, len(ll.participants))
	copy(out, ll.participants)
	return out
}

// AddReferee records a referee being added to the session. Idempotent.
func (ll *LiveLobby) AddReferee(userID uuid.UUID, handle string) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.referees[userID] = handle
}

// RemoveReferee records a referee being removed from the session.
func (ll *LiveLobby) RemoveReferee(userID uuid.UUID) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	delete(ll.referees, userID)
}

// HasReferee reports whether the user is currently a referee of the session.
func (ll *LiveLobby) HasReferee(userID uuid.UUID) bool {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	_, ok := ll.referees[userID]
	return ok
}
