// internal/interactions/service_test.go
package interactions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/errs"
	"github.com/arbiter-gg/arbiter/internal/live"
	"github.com/arbiter-gg/arbiter/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type fixture struct {
	store    *fakeStore
	registry *live.Registry
	rt       *fakeSessionClient
	svc      *Service
	lobby    *models.Lobby
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	registry := live.NewRegistry()
	rt := newFakeSessionClient()

	id, _ := uuid.NewV7()
	session := "sess-1"
	lobby := &models.Lobby{
		ID:                id,
		Kind:              models.KindQualifier,
		Name:              "Qualifier Lobby A1",
		Schedule:          time.Now().UTC().Add(2 * time.Hour),
		ReminderStatus:    models.ReminderPending,
		SessionID:         &session,
		AnnounceMessageID: "msg-1",
		StaffChannelID:    "staff-chan",
		PlayerChannelID:   "player-chan",
	}
	store.addLobby(lobby)

	return &fixture{
		store:    store,
		registry: registry,
		rt:       rt,
		svc:      NewService(store, registry, rt, 15*time.Minute, testLogger()),
		lobby:    lobby,
	}
}

func (f *fixture) referee(handle string) uuid.UUID {
	id := uuid.New()
	f.store.addStaff(&models.StaffMember{UserID: id, Handle: handle, Role: models.RoleReferee})
	return id
}

func TestClaimRefereeSuccess(t *testing.T) {
	f := newFixture(t)
	ref := f.referee("refone")

	if err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, ref); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	holder := f.store.refereeOf(f.lobby.ID)
	if holder == nil || *holder != ref {
		t.Fatalf("claim not persisted: %v", holder)
	}
	ll, ok := f.registry.Get("sess-1")
	if !ok || !ll.HasReferee(ref) {
		t.Fatal("referee not recorded in the live registry")
	}
	if got := f.rt.channel.grants(); len(got) != 1 || got[0] != "refone" {
		t.Fatalf("session grant not issued: %v", got)
	}
}

func TestClaimRefereeRequiresStaffRole(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, uuid.New())
	if !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
	if f.store.refereeOf(f.lobby.ID) != nil {
		t.Fatal("claim persisted despite missing staff role")
	}
}

func TestClaimRefereeLockoutWindow(t *testing.T) {
	f := newFixture(t)
	ref := f.referee("refone")
	f.lobby.Schedule = time.Now().UTC().Add(5 * time.Minute)
	f.store.addLobby(f.lobby)

	err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, ref)
	if !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected lockout precondition failure, got %v", err)
	}
}

func TestClaimRefereeAlreadyClaimed(t *testing.T) {
	f := newFixture(t)
	first := f.referee("refone")
	second := f.referee("reftwo")

	if err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, first); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, second)
	if !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
	if holder := f.store.refereeOf(f.lobby.ID); *holder != first {
		t.Fatalf("claim moved to %v", holder)
	}
}

// Re-claiming a lobby you already hold is an idempotent success and re-issues
// the session grant, so a crash between commit and grant heals on retry.
func TestClaimRefereeIdempotentForHolder(t *testing.T) {
	f := newFixture(t)
	ref := f.referee("refone")

	if err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, ref); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, ref); err != nil {
		t.Fatalf("repeat claim failed: %v", err)
	}
	if got := f.rt.channel.grants(); len(got) != 2 {
		t.Fatalf("expected the grant re-driven, got %v", got)
	}
}

// TestClaimRefereeConcurrentExactlyOneWinner races many claimants over one
// lobby: exactly one succeeds, everyone else gets a conflict or precondition
// failure, never a second success.
func TestClaimRefereeConcurrentExactlyOneWinner(t *testing.T) {
	f := newFixture(t)

	const claimants = 16
	ids := make([]uuid.UUID, claimants)
	for i := range ids {
		ids[i] = f.referee("ref")
	}

	var wg sync.WaitGroup
	outcomes := make([]error, claimants)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			outcomes[i] = f.svc.ClaimReferee(context.Background(), f.lobby.ID, id)
		}(i, id)
	}
	wg.Wait()

	var wins int
	for _, err := range outcomes {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, errs.ErrConflictLost), errors.Is(err, errs.ErrPreconditionFailed):
		default:
			t.Fatalf("unexpected outcome: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}

	holder := f.store.refereeOf(f.lobby.ID)
	if holder == nil {
		t.Fatal("no claim persisted")
	}
}

func TestUnclaimRefereeOwnership(t *testing.T) {
	f := newFixture(t)
	holder := f.referee("refone")
	other := f.referee("reftwo")

	if err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, holder); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	err := f.svc.UnclaimReferee(context.Background(), f.lobby.ID, other)
	if !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure for non-holder, got %v", err)
	}

	if err := f.svc.UnclaimReferee(context.Background(), f.lobby.ID, holder); err != nil {
		t.Fatalf("unclaim by holder failed: %v", err)
	}
	if f.store.refereeOf(f.lobby.ID) != nil {
		t.Fatal("claim not released")
	}
	if ll, ok := f.registry.Get("sess-1"); ok && ll.HasReferee(holder) {
		t.Fatal("referee still in the live registry")
	}
	if got := f.rt.channel.revokes(); len(got) != 1 || got[0] != "refone" {
		t.Fatalf("session revoke not issued: %v", got)
	}
}

func TestUnclaimRefereeUnclaimedLobby(t *testing.T) {
	f := newFixture(t)
	ref := f.referee("refone")

	err := f.svc.UnclaimReferee(context.Background(), f.lobby.ID, ref)
	if !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

// Claim, release, claim again by someone else: the slot is reusable and each
// transition drives its own session side effects.
func TestClaimReleaseReclaim(t *testing.T) {
	f := newFixture(t)
	first := f.referee("refone")
	second := f.referee("reftwo")

	if err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, first); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if err := f.svc.UnclaimReferee(context.Background(), f.lobby.ID, first); err != nil {
		t.Fatalf("unclaim failed: %v", err)
	}
	if err := f.svc.ClaimReferee(context.Background(), f.lobby.ID, second); err != nil {
		t.Fatalf("reclaim failed: %v", err)
	}
	if holder := f.store.refereeOf(f.lobby.ID); holder == nil || *holder != second {
		t.Fatalf("claim not held by the second referee: %v", holder)
	}
	if got := f.rt.channel.grants(); len(got) != 2 {
		t.Fatalf("expected two grants across the sequence, got %v", got)
	}
}

// Invites key off live presence, not the persisted roster: a competitor on the
// roster who never joined the session cannot be invited.
func TestInviteRequiresLivePresence(t *testing.T) {
	f := newFixture(t)

	err := f.svc.InviteParticipant(context.Background(), f.lobby.ID, "1001")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not-found for absent competitor, got %v", err)
	}
	if got := f.rt.channel.invites(); len(got) != 0 {
		t.Fatalf("invite issued for absent competitor: %v", got)
	}

	ll := f.registry.GetOrCreate("sess-1", f.lobby.ID)
	ll.AddParticipant(models.Participant{CompetitorID: "1001", Handle: "playerone"})

	if err := f.svc.InviteParticipant(context.Background(), f.lobby.ID, "1001"); err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	if got := f.rt.channel.invites(); len(got) != 1 || got[0] != "playerone" {
		t.Fatalf("invite not issued by handle: %v", got)
	}
}

func TestInviteNoLiveSession(t *testing.T) {
	f := newFixture(t)
	f.lobby.SessionID = nil
	f.store.addLobby(f.lobby)

	err := f.svc.InviteParticipant(context.Background(), f.lobby.ID, "1001")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not-found without a session, got %v", err)
	}
}
