// internal/handlers/lobby.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/arbiter-gg/arbiter/internal/auth"
	"github.com/arbiter-gg/arbiter/internal/errs"
	"github.com/arbiter-gg/arbiter/internal/models"
)

// LobbyStore is the store slice the HTTP endpoints use.
type LobbyStore interface {
	InsertLobby(ctx context.Context, lobby *models.Lobby) error
	GetLobby(ctx context.Context, lobbyID uuid.UUID) (*models.Lobby, error)
	Reschedule(ctx context.Context, lobbyID uuid.UUID, schedule time.Time) error
	GetStaffMember(ctx context.Context, userID uuid.UUID) (*models.StaffMember, error)
}

// authenticateStaff checks the auth_token cookie and verifies the caller is a
// staff member. Returns the staff user id, or writes the error reply itself.
func (s *APIServer) authenticateStaff(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie("auth_token")
	if err != nil {
		http.Error(w, "missing auth_token", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	userIDStr, err := auth.AuthenticateJWT(cookie.Value)
	if err != nil {
		http.Error(w, "invalid token", http.StatusForbidden)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user id format in token", http.StatusBadRequest)
		return uuid.Nil, false
	}
	if _, err := s.Store.GetStaffMember(r.Context(), userID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			http.Error(w, "not a staff member", http.StatusForbidden)
		} else {
			http.Error(w, "staff lookup failed", http.StatusInternalServerError)
		}
		return uuid.Nil, false
	}
	return userID, true
}

type createLobbyRequest struct {
	Kind              models.LobbyKind     `json:"kind"`
	Name              string               `json:"name"`
	Schedule          time.Time            `json:"schedule"`
	AnnounceMessageID string               `json:"announce_message_id"`
	StaffChannelID    string               `json:"staff_channel_id"`
	PlayerChannelID   string               `json:"player_channel_id"`
	Participants      []models.Participant `json:"participants"`
}

// CreateLobbyHandler persists a new lobby with a pending reminder status.
func (s *APIServer) CreateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticateStaff(w, r); !ok {
		return
	}

	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad lobby request payload", http.StatusBadRequest)
		return
	}
	if req.Kind != models.KindQualifier && req.Kind != models.KindTryout {
		http.Error(w, "invalid lobby kind", http.StatusBadRequest)
		return
	}
	if req.Schedule.IsZero() || req.StaffChannelID == "" || req.PlayerChannelID == "" {
		http.Error(w, "schedule and channel ids are required", http.StatusBadRequest)
		return
	}

	lobbyID, err := uuid.NewV7()
	if err != nil {
		s.Logger.Errorf("generate lobby id: %v", err)
		http.Error(w, "failed to create lobby", http.StatusInternalServerError)
		return
	}
	lobby := &models.Lobby{
		ID:                lobbyID,
		Kind:              req.Kind,
		Name:              req.Name,
		Schedule:          req.Schedule.UTC(),
		ReminderStatus:    models.ReminderPending,
		AnnounceMessageID: req.AnnounceMessageID,
		StaffChannelID:    req.StaffChannelID,
		PlayerChannelID:   req.PlayerChannelID,
		Participants:      req.Participants,
	}
	if err := s.Store.InsertLobby(r.Context(), lobby); err != nil {
		s.Logger.Errorf("insert lobby: %v", err)
		http.Error(w, "failed to create lobby", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lobby)
}

// GetLobbyHandler returns one lobby by id (?id=).
func (s *APIServer) GetLobbyHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticateStaff(w, r); !ok {
		return
	}

	lobbyID, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "invalid lobby id", http.StatusBadRequest)
		return
	}
	lobby, err := s.Store.GetLobby(r.Context(), lobbyID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			http.Error(w, "lobby not found", http.StatusNotFound)
		} else {
			s.Logger.Errorf("get lobby: %v", err)
			http.Error(w, "failed to load lobby", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lobby)
}

type rescheduleRequest struct {
	LobbyID  uuid.UUID `json:"lobby_id"`
	Schedule time.Time `json:"schedule"`
}

// RescheduleLobbyHandler moves a lobby to a new schedule and resets its
// reminder status to pending: the only path back from a terminal status.
func (s *APIServer) RescheduleLobbyHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticateStaff(w, r); !ok {
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad reschedule payload", http.StatusBadRequest)
		return
	}
	if req.Schedule.IsZero() {
		http.Error(w, "schedule is required", http.StatusBadRequest)
		return
	}

	if err := s.Store.Reschedule(r.Context(), req.LobbyID, req.Schedule); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			http.Error(w, "lobby not found", http.StatusNotFound)
		} else {
			s.Logger.Errorf("reschedule lobby: %v", err)
			http.Error(w, "failed to reschedule", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
