// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/arbiter-gg/arbiter/internal/auth"
	"github.com/arbiter-gg/arbiter/internal/errs"
)

type loginRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

type loginResponse struct {
	Handle string `json:"handle"`
	Role   string `json:"role"`
}

// LoginHandler exchanges a staff API token for a session cookie. The token is
// checked against the member's stored argon2id hash; a bad user id and a bad
// token produce the same reply so the endpoint leaks nothing about which
// staff ids exist.
func (s *APIServer) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad login payload", http.StatusBadRequest)
		return
	}
	if req.UserID == uuid.Nil || req.Token == "" {
		http.Error(w, "user_id and token are required", http.StatusBadRequest)
		return
	}

	member, err := s.Store.GetStaffMember(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			http.Error(w, "invalid credentials", http.StatusForbidden)
		} else {
			s.Logger.Errorf("staff lookup failed: %v", err)
			http.Error(w, "login failed", http.StatusInternalServerError)
		}
		return
	}

	ok, err := auth.CompareToken(req.Token, member.TokenHash)
	if err != nil || !ok {
		http.Error(w, "invalid credentials", http.StatusForbidden)
		return
	}

	token, err := auth.CreateJWT(member.UserID.String())
	if err != nil {
		s.Logger.Errorf("failed to sign session token: %v", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{Handle: member.Handle, Role: string(member.Role)})
}
