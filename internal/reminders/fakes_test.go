// internal/reminders/fakes_test.go
package reminders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arbiter-gg/arbiter/internal/models"
	"github.com/arbiter-gg/arbiter/internal/queue"
)

// fakeStore is an in-memory lobby store with the same compare-and-swap
// semantics the real store has.
type fakeStore struct {
	mu      sync.Mutex
	lobbies map[uuid.UUID]*models.Lobby
}

func newFakeStore(lobbies ...*models.Lobby) *fakeStore {
	fs := &fakeStore{lobbies: make(map[uuid.UUID]*models.Lobby)}
	for _, l := range lobbies {
		fs.lobbies[l.ID] = l
	}
	return fs
}

func (fs *fakeStore) add(l *models.Lobby) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.lobbies[l.ID] = l
}

func (fs *fakeStore) FindDueReminders(ctx context.Context, kind models.LobbyKind, from, to time.Time) ([]models.Lobby, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []models.Lobby
	for _, l := range fs.lobbies {
		if l.Kind == kind && l.ReminderStatus == models.ReminderPending &&
			l.Schedule.After(from) && l.Schedule.Before(to) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (fs *fakeStore) MarkReminderScheduled(ctx context.Context, lobbyID uuid.UUID) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	l, ok := fs.lobbies[lobbyID]
	if !ok || l.ReminderStatus != models.ReminderPending {
		return false, nil
	}
	l.ReminderStatus = models.ReminderScheduled
	return true, nil
}

func (fs *fakeStore) FinishReminder(ctx context.Context, lobbyID uuid.UUID, status models.ReminderStatus) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	l, ok := fs.lobbies[lobbyID]
	if !ok || l.ReminderStatus != models.ReminderScheduled {
		return false, nil
	}
	l.ReminderStatus = status
	return true, nil
}

func (fs *fakeStore) status(lobbyID uuid.UUID) models.ReminderStatus {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.lobbies[lobbyID].ReminderStatus
}

// fakeEnqueuer records everything enqueued, per queue.
type fakeEnqueuer struct {
	mu      sync.Mutex
	byQueue map[queue.Queue][]any
}

func newFakeEnqueuer() *fakeEnqueuer {
	return &fakeEnqueuer{byQueue: make(map[queue.Queue][]any)}
}

func (fe *fakeEnqueuer) EnqueueBulk(ctx context.Context, q queue.Queue, payloads []any) error {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.byQueue[q] = append(fe.byQueue[q], payloads...)
	return nil
}

func (fe *fakeEnqueuer) enqueued(q queue.Queue) []any {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.byQueue[q]
}

// fakeMessenger fails the channels listed in failing until they are healed,
// either explicitly or after a set number of rejections.
type fakeMessenger struct {
	mu        sync.Mutex
	sent      map[string][]string // channelID -> contents
	failing   map[string]bool
	failTimes map[string]int // channelID -> remaining rejections before healing
}

func newFakeMessenger(failing ...string) *fakeMessenger {
	fm := &fakeMessenger{
		sent:      make(map[string][]string),
		failing:   make(map[string]bool),
		failTimes: make(map[string]int),
	}
	for _, ch := range failing {
		fm.failing[ch] = true
	}
	return fm
}

func (fm *fakeMessenger) SendMessage(ctx context.Context, channelID, content string) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if fm.failing[channelID] {
		if n, ok := fm.failTimes[channelID]; ok {
			if n <= 1 {
				delete(fm.failing, channelID)
				delete(fm.failTimes, channelID)
			} else {
				fm.failTimes[channelID] = n - 1
			}
		}
		return errors.New("rate limited")
	}
	fm.sent[channelID] = append(fm.sent[channelID], content)
	return nil
}

func (fm *fakeMessenger) heal(channelID string) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	delete(fm.failing, channelID)
	delete(fm.failTimes, channelID)
}

// failFor makes the channel reject exactly n sends, then recover.
func (fm *fakeMessenger) failFor(channelID string, n int) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.failing[channelID] = true
	fm.failTimes[channelID] = n
}

func (fm *fakeMessenger) count(channelID string) int {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return len(fm.sent[channelID])
}

// fakeLedger mirrors the Redis delivery ledger in a map.
type fakeLedger struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seen: make(map[string]bool)}
}

func (fl *fakeLedger) Delivered(ctx context.Context, lobbyID uuid.UUID, channelID string) (bool, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.seen[lobbyID.String()+":"+channelID], nil
}

func (fl *fakeLedger) MarkDelivered(ctx context.Context, lobbyID uuid.UUID, channelID string) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.seen[lobbyID.String()+":"+channelID] = true
	return nil
}
