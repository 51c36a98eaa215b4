// internal/interactions/service.go
package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/errs"
	"github.com/arbiter-gg/arbiter/internal/live"
	"github.com/arbiter-gg/arbiter/internal/metrics"
	"github.com/arbiter-gg/arbiter/internal/models"
	"github.com/arbiter-gg/arbiter/internal/realtime"
)

// Store is the slice of the lobby store the interactive operations touch.
// Claim and unclaim are compare-and-swap updates: the bool result reports
// whether the conditional write affected a row.
type Store interface {
	GetLobby(ctx context.Context, lobbyID uuid.UUID) (*models.Lobby, error)
	GetLobbyByMessage(ctx context.Context, messageID string) (*models.Lobby, error)
	ClaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error)
	UnclaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error)
	GetStaffMember(ctx context.Context, userID uuid.UUID) (*models.StaffMember, error)
}

// Service implements the interactive operations: claim/unclaim referee and
// invite participant. Durable truth is written first; the live registry and
// the real-time session are only touched after the store commit, so a crash
// in between leaves a recoverable state (the side effects are re-drivable,
// a duplicate privilege grant is harmless).
type Service struct {
	store    Store
	registry *live.Registry
	rt       realtime.SessionClient
	logger   *logrus.Logger

	// ClaimLockout blocks claims once the schedule is within this window of
	// now. Zero disables the check.
	ClaimLockout time.Duration
}

// NewService wires the interactive operation service.
func NewService(store Store, registry *live.Registry, rt realtime.SessionClient, lockout time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		store:        store,
		registry:     registry,
		rt:           rt,
		logger:       logger,
		ClaimLockout: lockout,
	}
}

// ClaimReferee assigns userID as the lobby's referee.
//
// Preconditions are checked against the store first, but the claim itself is
// the conditional update: observing a free slot here guarantees nothing under
// concurrency, so a zero-row update maps to ErrConflictLost rather than
// silently succeeding.
func (s *Service) ClaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) error {
	lobby, err := s.store.GetLobby(ctx, lobbyID)
	if err != nil {
		return err
	}

	staff, err := s.store.GetStaffMember(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%w: caller holds no staff role", errs.ErrPreconditionFailed)
		}
		return err
	}
	if !staff.Role.CanReferee() {
		return fmt.Errorf("%w: role %q cannot referee", errs.ErrPreconditionFailed, staff.Role)
	}

	if s.ClaimLockout > 0 && time.Until(lobby.Schedule) < s.ClaimLockout {
		return fmt.Errorf("%w: lobby starts within %s, claims are locked", errs.ErrPreconditionFailed, s.ClaimLockout)
	}

	if lobby.ClaimedBy(userID) {
		// Already ours: re-drive the side effects and report success, so a
		// crash between store commit and privilege grant heals on retry.
		s.grantRefereeSideEffects(ctx, lobby, userID, staff.Handle)
		return nil
	}
	if lobby.Claimed() {
		return fmt.Errorf("%w: lobby already claimed", errs.ErrPreconditionFailed)
	}

	won, err := s.store.ClaimReferee(ctx, lobbyID, userID)
	if err != nil {
		return err
	}
	if !won {
		metrics.ClaimConflicts.Inc()
		return fmt.Errorf("%w: lobby already claimed", errs.ErrConflictLost)
	}

	s.grantRefereeSideEffects(ctx, lobby, userID, staff.Handle)
	return nil
}

// UnclaimReferee releases the caller's claim on the lobby.
func (s *Service) UnclaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) error {
	lobby, err := s.store.GetLobby(ctx, lobbyID)
	if err != nil {
		return err
	}
	if !lobby.Claimed() {
		return fmt.Errorf("%w: lobby is not claimed", errs.ErrPreconditionFailed)
	}
	if !lobby.ClaimedBy(userID) {
		return fmt.Errorf("%w: lobby is claimed by someone else", errs.ErrPreconditionFailed)
	}

	won, err := s.store.UnclaimReferee(ctx, lobbyID, userID)
	if err != nil {
		return err
	}
	if !won {
		return fmt.Errorf("%w: claim changed under you", errs.ErrConflictLost)
	}

	if lobby.SessionID != nil {
		if ll, ok := s.registry.Get(*lobby.SessionID); ok {
			ll.RemoveReferee(userID)
		}
		s.revokeReferee(ctx, *lobby.SessionID, userID)
	}
	return nil
}

// InviteParticipant invites a competitor into the lobby's live session. The
// competitor must be present in the live registry (sourced from real-time
// join events, not the persisted roster), otherwise the invite cannot reach
// them and no external call is made.
func (s *Service) InviteParticipant(ctx context.Context, lobbyID uuid.UUID, competitorID string) error {
	lobby, err := s.store.GetLobby(ctx, lobbyID)
	if err != nil {
		return err
	}
	if lobby.SessionID == nil {
		return fmt.Errorf("%w: lobby has no live session", errs.ErrNotFound)
	}

	ll, ok := s.registry.Get(*lobby.SessionID)
	if !ok {
		return fmt.Errorf("%w: live session not observed", errs.ErrNotFound)
	}
	p, ok := ll.Participant(competitorID)
	if !ok {
		return fmt.Errorf("%w: competitor %s is not present in the session", errs.ErrNotFound, competitorID)
	}

	ch, err := s.rt.GetChannel(ctx, *lobby.SessionID)
	if err != nil {
		return fmt.Errorf("get channel: %w", err)
	}
	if err := ch.InvitePlayer(ctx, p.Handle); err != nil {
		return fmt.Errorf("invite %s: %w", p.Handle, err)
	}
	return nil
}

// grantRefereeSideEffects updates the registry and grants session privileges
// after a committed claim. Failures here are logged, never propagated: the
// durable claim stands and the grant can be re-driven.
func (s *Service) grantRefereeSideEffects(ctx context.Context, lobby *models.Lobby, userID uuid.UUID, handle string) {
	if lobby.SessionID == nil {
		return
	}
	ll := s.registry.GetOrCreate(*lobby.SessionID, lobby.ID)
	ll.AddReferee(userID, handle)

	ch, err := s.rt.GetChannel(ctx, *lobby.SessionID)
	if err != nil {
		s.logger.Warnf("referee granted in store but channel lookup failed: %v", err)
		return
	}
	if err := ch.GrantReferee(ctx, handle); err != nil {
		s.logger.Warnf("referee granted in store but session grant failed: %v", err)
	}
}

func (s *Service) revokeReferee(ctx context.Context, sessionID string, userID uuid.UUID) {
	staff, err := s.store.GetStaffMember(ctx, userID)
	if err != nil {
		s.logger.Warnf("unclaim committed but staff lookup failed: %v", err)
		return
	}
	ch, err := s.rt.GetChannel(ctx, sessionID)
	if err != nil {
		s.logger.Warnf("unclaim committed but channel lookup failed: %v", err)
		return
	}
	if err := ch.RevokeReferee(ctx, staff.Handle); err != nil {
		s.logger.Warnf("unclaim committed but session revoke failed: %v", err)
	}
}
