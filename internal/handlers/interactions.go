// internal/handlers/interactions.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/arbiter-gg/arbiter/internal/interactions"
)

// InteractionsHandler receives one interaction event from the chat platform
// and writes back exactly one reply, whatever the outcome. The dispatcher
// already folds every failure path into a reply, so this handler only deals
// with transport-level problems.
func (s *APIServer) InteractionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var ev interactions.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "bad interaction payload", http.StatusBadRequest)
		return
	}
	if ev.ActionID == "" {
		http.Error(w, "missing action_id", http.StatusBadRequest)
		return
	}

	reply := s.Dispatcher.Dispatch(r.Context(), ev)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		s.Logger.Errorf("failed to write interaction reply: %v", err)
	}
}
