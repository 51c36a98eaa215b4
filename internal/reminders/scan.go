// internal/reminders/scan.go
package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/metrics"
	"github.com/arbiter-gg/arbiter/internal/models"
	"github.com/arbiter-gg/arbiter/internal/queue"
)

// ScanRequest is the payload of one scan job: which lobby kind to scan and
// how far ahead to look.
type ScanRequest struct {
	Kind         models.LobbyKind `json:"kind"`
	LookaheadMin int              `json:"lookahead_min"`
}

// Scanner finds lobbies whose schedule falls inside the lookahead window and
// fans out one send job per lobby. Safe to run concurrently or redundantly:
// the per-lobby pending -> scheduled compare-and-swap is the sole
// deduplication, so exactly one invocation wins each lobby.
type Scanner struct {
	store  Store
	enq    Enqueuer
	logger *logrus.Logger
}

// NewScanner wires a Scanner.
func NewScanner(store Store, enq Enqueuer, logger *logrus.Logger) *Scanner {
	return &Scanner{store: store, enq: enq, logger: logger}
}

// HandleJob is the queue handler for scan jobs.
func (s *Scanner) HandleJob(ctx context.Context, body []byte) error {
	var req ScanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("unmarshal scan request: %w", err)
	}
	return s.Scan(ctx, req.Kind, time.Duration(req.LookaheadMin)*time.Minute)
}

// Scan runs one schedule scan for the given kind. An empty eligible set is a
// no-op: no store writes, no enqueues.
func (s *Scanner) Scan(ctx context.Context, kind models.LobbyKind, lookahead time.Duration) error {
	now := time.Now().UTC()

	lobbies, err := s.store.FindDueReminders(ctx, kind, now, now.Add(lookahead))
	if err != nil {
		return fmt.Errorf("find due reminders: %w", err)
	}
	if len(lobbies) == 0 {
		return nil
	}

	// Flip each winner to scheduled first, then enqueue only the winners.
	// Store commit before queue side effect: a crash in between strands the
	// lobby in scheduled for operator reconciliation, which is preferred over
	// risking a duplicate send.
	var payloads []any
	for i := range lobbies {
		won, err := s.store.MarkReminderScheduled(ctx, lobbies[i].ID)
		if err != nil {
			return fmt.Errorf("mark scheduled %s: %w", lobbies[i].ID, err)
		}
		if !won {
			// A concurrent scan got there first. Expected, not an error.
			metrics.ScanConflicts.WithLabelValues(string(kind)).Inc()
			s.logger.WithField("lobby", lobbies[i].ID).Debug("lost scan race, skipping")
			continue
		}
		payloads = append(payloads, BuildPayload(&lobbies[i]))
	}
	if len(payloads) == 0 {
		return nil
	}

	if err := s.enq.EnqueueBulk(ctx, queue.SendQueue(kind), payloads); err != nil {
		return fmt.Errorf("enqueue send jobs: %w", err)
	}

	metrics.RemindersScheduled.WithLabelValues(string(kind)).Add(float64(len(payloads)))
	s.logger.WithFields(logrus.Fields{
		"kind":      kind,
		"due":       len(lobbies),
		"scheduled": len(payloads),
	}).Info("reminder scan completed")
	return nil
}

// BuildPayload denormalizes a lobby into the immutable snapshot its send job
// consumes. The send job never re-reads schedule-sensitive fields.
func BuildPayload(l *models.Lobby) models.ReminderPayload {
	p := models.ReminderPayload{
		LobbyID:         l.ID,
		Kind:            l.Kind,
		LobbyName:       l.Name,
		Schedule:        l.Schedule,
		StaffChannelID:  l.StaffChannelID,
		PlayerChannelID: l.PlayerChannelID,
	}
	if l.RefereeID != nil {
		p.RefereeMentionID = l.RefereeID.String()
	}
	for _, part := range l.Participants {
		p.ParticipantMention = append(p.ParticipantMention, part.MentionID)
	}
	return p
}
