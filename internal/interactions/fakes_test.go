// internal/interactions/fakes_test.go
package interactions

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/arbiter-gg/arbiter/internal/errs"
	"github.com/arbiter-gg/arbiter/internal/models"
	"github.com/arbiter-gg/arbiter/internal/realtime"
)

// fakeStore keeps lobbies and staff in maps and mirrors the store's
// compare-and-swap semantics under a single mutex, so concurrent claims
// resolve to exactly one winner like they do against the database.
type fakeStore struct {
	mu      sync.Mutex
	lobbies map[uuid.UUID]*models.Lobby
	staff   map[uuid.UUID]*models.StaffMember
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lobbies: make(map[uuid.UUID]*models.Lobby),
		staff:   make(map[uuid.UUID]*models.StaffMember),
	}
}

func (fs *fakeStore) addLobby(l *models.Lobby) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.lobbies[l.ID] = l
}

func (fs *fakeStore) addStaff(m *models.StaffMember) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.staff[m.UserID] = m
}

func (fs *fakeStore) GetLobby(ctx context.Context, lobbyID uuid.UUID) (*models.Lobby, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	l, ok := fs.lobbies[lobbyID]
	if !ok {
		return nil, fmt.Errorf("%w: lobby %s", errs.ErrNotFound, lobbyID)
	}
	cp := *l
	return &cp, nil
}

func (fs *fakeStore) GetLobbyByMessage(ctx context.Context, messageID string) (*models.Lobby, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, l := range fs.lobbies {
		if l.AnnounceMessageID == messageID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: no lobby for message %s", errs.ErrNotFound, messageID)
}

func (fs *fakeStore) ClaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	l, ok := fs.lobbies[lobbyID]
	if !ok || l.RefereeID != nil {
		return false, nil
	}
	id := userID
	l.RefereeID = &id
	return true, nil
}

func (fs *fakeStore) UnclaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	l, ok := fs.lobbies[lobbyID]
	if !ok || l.RefereeID == nil || *l.RefereeID != userID {
		return false, nil
	}
	l.RefereeID = nil
	return true, nil
}

func (fs *fakeStore) GetStaffMember(ctx context.Context, userID uuid.UUID) (*models.StaffMember, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	m, ok := fs.staff[userID]
	if !ok {
		return nil, fmt.Errorf("%w: staff %s", errs.ErrNotFound, userID)
	}
	return m, nil
}

func (fs *fakeStore) refereeOf(lobbyID uuid.UUID) *uuid.UUID {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.lobbies[lobbyID].RefereeID
}

// fakeChannel records the session commands issued against it.
type fakeChannel struct {
	mu       sync.Mutex
	invited  []string
	granted  []string
	revoked  []string
	messages []string
}

func (fc *fakeChannel) SendMessage(ctx context.Context, text string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.messages = append(fc.messages, text)
	return nil
}

func (fc *fakeChannel) InvitePlayer(ctx context.Context, handle string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.invited = append(fc.invited, handle)
	return nil
}

func (fc *fakeChannel) GrantReferee(ctx context.Context, handle string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.granted = append(fc.granted, handle)
	return nil
}

func (fc *fakeChannel) RevokeReferee(ctx context.Context, handle string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.revoked = append(fc.revoked, handle)
	return nil
}

func (fc *fakeChannel) invites() []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]string(nil), fc.invited...)
}

func (fc *fakeChannel) grants() []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]string(nil), fc.granted...)
}

func (fc *fakeChannel) revokes() []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]string(nil), fc.revoked...)
}

// fakeSessionClient hands back one shared fakeChannel for every session.
type fakeSessionClient struct {
	channel *fakeChannel
	events  chan realtime.Event
}

func newFakeSessionClient() *fakeSessionClient {
	return &fakeSessionClient{
		channel: &fakeChannel{},
		events:  make(chan realtime.Event),
	}
}

func (fc *fakeSessionClient) GetChannel(ctx context.Context, sessionID string) (realtime.Channel, error) {
	return fc.channel, nil
}

func (fc *fakeSessionClient) Events() <-chan realtime.Event {
	return fc.events
}
