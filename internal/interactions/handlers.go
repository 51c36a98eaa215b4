// internal/interactions/handlers.go
package interactions

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/errs"
	"github.com/arbiter-gg/arbiter/internal/metrics"
	"github.com/arbiter-gg/arbiter/internal/models"
)

// Action ids wired to the announce message buttons.
const (
	ActionClaim   = "claim_referee"
	ActionUnclaim = "unclaim_referee"
	ActionInvite  = "invite"
)

// RegisterHandlers binds the standard lobby actions to the dispatcher.
func (s *Service) RegisterHandlers(d *Dispatcher) {
	d.Register(ActionClaim, s.handleClaim)
	d.Register(ActionUnclaim, s.handleUnclaim)
	d.Register(ActionInvite, s.handleInvite)
}

func (s *Service) handleClaim(ctx context.Context, ev Event) Reply {
	lobby, err := s.store.GetLobbyByMessage(ctx, ev.MessageID)
	if err != nil {
		return s.replyFor(ActionClaim, ev, nil, err, "")
	}
	err = s.ClaimReferee(ctx, lobby.ID, ev.CallerID)
	return s.replyFor(ActionClaim, ev, lobby, err, "You are now the referee for **"+lobby.Name+"**.")
}

func (s *Service) handleUnclaim(ctx context.Context, ev Event) Reply {
	lobby, err := s.store.GetLobbyByMessage(ctx, ev.MessageID)
	if err != nil {
		return s.replyFor(ActionUnclaim, ev, nil, err, "")
	}
	err = s.UnclaimReferee(ctx, lobby.ID, ev.CallerID)
	return s.replyFor(ActionUnclaim, ev, lobby, err, "You released **"+lobby.Name+"**; the referee slot is open again.")
}

func (s *Service) handleInvite(ctx context.Context, ev Event) Reply {
	lobby, err := s.store.GetLobbyByMessage(ctx, ev.MessageID)
	if err != nil {
		return s.replyFor(ActionInvite, ev, nil, err, "")
	}
	competitorID := ev.Arg()
	if competitorID == "" {
		return Reply{Content: "No competitor specified.", Ephemeral: true}
	}
	err = s.InviteParticipant(ctx, lobby.ID, competitorID)
	return s.replyFor(ActionInvite, ev, lobby, err, "Invite sent.")
}

// replyFor maps an operation outcome to the single user-visible reply.
// Expected race losses log at info level: they are normal outcomes, never
// errors.
func (s *Service) replyFor(action string, ev Event, lobby *models.Lobby, err error, success string) Reply {
	fields := logrus.Fields{"action": action, "caller": ev.CallerID}
	if lobby != nil {
		fields["lobby"] = lobby.ID
	}

	switch {
	case err == nil:
		metrics.InteractionReplies.WithLabelValues(action, "ok").Inc()
		return Reply{Content: success}

	case errors.Is(err, errs.ErrConflictLost):
		s.logger.WithFields(fields).Infof("lost claim race: %v", err)
		metrics.InteractionReplies.WithLabelValues(action, "conflict").Inc()
		return Reply{Content: "Someone beat you to it. This lobby is already claimed.", Ephemeral: true}

	case errors.Is(err, errs.ErrPreconditionFailed):
		s.logger.WithFields(fields).Infof("precondition failed: %v", err)
		metrics.InteractionReplies.WithLabelValues(action, "precondition").Inc()
		return Reply{Content: userMessage(err), Ephemeral: true}

	case errors.Is(err, errs.ErrNotFound):
		s.logger.WithFields(fields).Infof("not found: %v", err)
		metrics.InteractionReplies.WithLabelValues(action, "not_found").Inc()
		return Reply{Content: userMessage(err), Ephemeral: true}

	default:
		s.logger.WithFields(fields).Errorf("interaction failed: %v", err)
		metrics.InteractionReplies.WithLabelValues(action, "error").Inc()
		return Reply{Content: "Something went wrong, please try again in a moment.", Ephemeral: true}
	}
}

// userMessage strips the sentinel prefix into a presentable sentence.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return "That lobby or player could not be found."
	case errors.Is(err, errs.ErrPreconditionFailed):
		// The sentinel wrap carries the specific reason after ": ".
		msg := err.Error()
		if i := len(errs.ErrPreconditionFailed.Error()) + 2; i < len(msg) {
			return "Cannot do that: " + msg[i:] + "."
		}
		return "Cannot do that."
	default:
		return "Request failed."
	}
}
