// internal/reminders/messages.go
package reminders

import (
	"fmt"
	"strings"

	"github.com/arbiter-gg/arbiter/internal/models"
)

// Mention renders a chat-platform mention for a user or competitor id.
func Mention(id string) string {
	return "<@" + id + ">"
}

// StaffMessage is the reminder posted to the staff/referee channel. It pings
// the assigned referee, or flags the lobby as unassigned.
func StaffMessage(p models.ReminderPayload) string {
	when := p.Schedule.Format("15:04 UTC, Jan 2")
	if p.RefereeMentionID == "" {
		return fmt.Sprintf("**%s** starts at %s, no referee assigned yet. The slot is open.", p.LobbyName, when)
	}
	return fmt.Sprintf("**%s** starts at %s. Referee: %s.", p.LobbyName, when, Mention(p.RefereeMentionID))
}

// PlayerMessage is the reminder posted to the player channel, pinging every
// participant on the snapshot roster.
func PlayerMessage(p models.ReminderPayload) string {
	when := p.Schedule.Format("15:04 UTC, Jan 2")
	mentions := make([]string, 0, len(p.ParticipantMention))
	for _, id := range p.ParticipantMention {
		mentions = append(mentions, Mention(id))
	}
	who := "participants"
	if len(mentions) > 0 {
		who = strings.Join(mentions, " ")
	}
	return fmt.Sprintf("%s: **%s** starts at %s. Be in the lobby on time.", who, p.LobbyName, when)
}
