// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/interactions"
	"github.com/arbiter-gg/arbiter/internal/live"
	"github.com/arbiter-gg/arbiter/internal/metrics"
	"github.com/arbiter-gg/arbiter/internal/middleware"
)

// APIServer holds the wiring the HTTP endpoints need: the lobby store slice,
// the live registry (for debugging endpoints) and the interaction dispatcher.
type APIServer struct {
	Logger     *logrus.Logger
	Store      LobbyStore
	Registry   *live.Registry
	Dispatcher *interactions.Dispatcher
}

// NewAPIServer wires an APIServer.
func NewAPIServer(logger *logrus.Logger, store LobbyStore, registry *live.Registry, dispatcher *interactions.Dispatcher) *APIServer {
	return &APIServer{
		Logger:     logger,
		Store:      store,
		Registry:   registry,
		Dispatcher: dispatcher,
	}
}

// Routes builds the HTTP mux with logging middleware applied.
func (s *APIServer) Routes() http.Handler {
	logged := middleware.LogMiddleware(s.Logger)

	mux := http.NewServeMux()

	// inbound interaction events from the chat platform
	mux.Handle("/interactions", logged(http.HandlerFunc(s.InteractionsHandler)))

	// staff token exchange
	mux.Handle("/auth/login", logged(http.HandlerFunc(s.LoginHandler)))

	// staff lobby endpoints
	mux.Handle("/lobby/create", logged(http.HandlerFunc(s.CreateLobbyHandler)))
	mux.Handle("/lobby/get", logged(http.HandlerFunc(s.GetLobbyHandler)))
	mux.Handle("/lobby/reschedule", logged(http.HandlerFunc(s.RescheduleLobbyHandler)))

	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}
