// internal/reminders/send.go
package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/errs"
	"github.com/arbiter-gg/arbiter/internal/metrics"
	"github.com/arbiter-gg/arbiter/internal/models"
)

// Sender delivers one lobby's reminder to its destination channels. Each
// destination is attempted independently; the ledger remembers successes so
// retries only resend what actually failed.
type Sender struct {
	store     Store
	ledger    Ledger
	messenger Messenger
	logger    *logrus.Logger

	// MaxAttempts bounds delivery retries before the job is marked failed and
	// dead-lettered. Backoff grows linearly between attempts.
	MaxAttempts int
	Backoff     time.Duration
}

// NewSender wires a Sender with the given retry budget.
func NewSender(store Store, ledger Ledger, messenger Messenger, maxAttempts int, logger *logrus.Logger) *Sender {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Sender{
		store:       store,
		ledger:      ledger,
		messenger:   messenger,
		logger:      logger,
		MaxAttempts: maxAttempts,
		Backoff:     5 * time.Second,
	}
}

// HandleJob is the queue handler for send jobs.
func (s *Sender) HandleJob(ctx context.Context, body []byte) error {
	var payload models.ReminderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("unmarshal reminder payload: %w", err)
	}
	return s.Handle(ctx, payload)
}

type destination struct {
	channelID string
	content   string
}

// Handle delivers the reminder and records the terminal status. A cancelled
// context returns before any terminal write, leaving the lobby at scheduled
// so an operator can requeue it.
func (s *Sender) Handle(ctx context.Context, p models.ReminderPayload) error {
	dests := []destination{
		{p.StaffChannelID, StaffMessage(p)},
		{p.PlayerChannelID, PlayerMessage(p)},
	}

	var lastErr error
	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		lastErr = s.deliverOnce(ctx, p, dests)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < s.MaxAttempts {
			s.logger.WithFields(logrus.Fields{
				"lobby":   p.LobbyID,
				"attempt": attempt,
			}).Warnf("reminder delivery incomplete, retrying: %v", lastErr)

			select {
			case <-time.After(time.Duration(attempt) * s.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if lastErr != nil {
		if _, err := s.store.FinishReminder(ctx, p.LobbyID, models.ReminderFailed); err != nil {
			s.logger.WithField("lobby", p.LobbyID).Errorf("failed to record reminder failure: %v", err)
		}
		metrics.RemindersFailed.WithLabelValues(string(p.Kind)).Inc()
		return fmt.Errorf("%w: lobby %s: %v", errs.ErrDeliveryFailed, p.LobbyID, lastErr)
	}

	won, err := s.store.FinishReminder(ctx, p.LobbyID, models.ReminderSent)
	if err != nil {
		return fmt.Errorf("finish reminder %s: %w", p.LobbyID, err)
	}
	if !won {
		// The lobby left the scheduled state under us (rescheduled, or a
		// duplicate delivery already finished it). The messages went out, so
		// the job itself still succeeded.
		s.logger.WithField("lobby", p.LobbyID).Info("reminder finished by someone else, not overwriting")
	}

	metrics.RemindersSent.WithLabelValues(string(p.Kind)).Inc()
	s.logger.WithFields(logrus.Fields{
		"lobby": p.LobbyID,
		"kind":  p.Kind,
	}).Info("reminder delivered")
	return nil
}

// deliverOnce makes one pass over the destinations, skipping any the ledger
// already recorded. A failure on one destination does not block the other.
func (s *Sender) deliverOnce(ctx context.Context, p models.ReminderPayload, dests []destination) error {
	var failures []error
	for _, d := range dests {
		delivered, err := s.ledger.Delivered(ctx, p.LobbyID, d.channelID)
		if err != nil {
			// Ledger down: worst case we resend to a channel that already got
			// the message. Duplicate sends on retry are acceptable.
			s.logger.Warnf("delivery ledger read failed: %v", err)
		}
		if delivered {
			continue
		}

		if err := s.messenger.SendMessage(ctx, d.channelID, d.content); err != nil {
			failures = append(failures, fmt.Errorf("channel %s: %w", d.channelID, err))
			continue
		}
		if err := s.ledger.MarkDelivered(ctx, p.LobbyID, d.channelID); err != nil {
			s.logger.Warnf("delivery ledger write failed: %v", err)
		}
	}
	return errors.Join(failures...)
}
