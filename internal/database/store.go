// internal/database/store.go
package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arbiter-gg/arbiter/internal/models"
)

// LobbyStore adapts the package-level query functions to the narrow store
// interfaces the reminder jobs and interactive handlers consume.
type LobbyStore struct{}

func (LobbyStore) InsertLobby(ctx context.Context, lobby *models.Lobby) error {
	return InsertLobby(ctx, lobby)
}

func (LobbyStore) Reschedule(ctx context.Context, lobbyID uuid.UUID, schedule time.Time) error {
	return Reschedule(ctx, lobbyID, schedule)
}

func (LobbyStore) FindDueReminders(ctx context.Context, kind models.LobbyKind, from, to time.Time) ([]models.Lobby, error) {
	return FindDueReminders(ctx, kind, from, to)
}

func (LobbyStore) MarkReminderScheduled(ctx context.Context, lobbyID uuid.UUID) (bool, error) {
	return MarkReminderScheduled(ctx, lobbyID)
}

func (LobbyStore) FinishReminder(ctx context.Context, lobbyID uuid.UUID, status models.ReminderStatus) (bool, error) {
	return FinishReminder(ctx, lobbyID, status)
}

func (LobbyStore) GetLobby(ctx context.Context, lobbyID uuid.UUID) (*models.Lobby, error) {
	return GetLobby(ctx, lobbyID)
}

func (LobbyStore) GetLobbyByMessage(ctx context.Context, messageID string) (*models.Lobby, error) {
	return GetLobbyByMessage(ctx, messageID)
}

func (LobbyStore) ClaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error) {
	return ClaimReferee(ctx, lobbyID, userID)
}

func (LobbyStore) UnclaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error) {
	return UnclaimReferee(ctx, lobbyID, userID)
}

func (LobbyStore) GetStaffMember(ctx context.Context, userID uuid.UUID) (*models.StaffMember, error) {
	return GetStaffMember(ctx, userID)
}
