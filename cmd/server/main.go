// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/auth"
	"github.com/arbiter-gg/arbiter/internal/config"
	"github.com/arbiter-gg/arbiter/internal/database"
	"github.com/arbiter-gg/arbiter/internal/handlers"
	"github.com/arbiter-gg/arbiter/internal/interactions"
	"github.com/arbiter-gg/arbiter/internal/live"
	"github.com/arbiter-gg/arbiter/internal/realtime"
)

func main() {
	// Persistent key files keep staff sessions valid across restarts; without
	// them a fresh keypair is generated and staff log in again.
	if priv, pub := os.Getenv("JWT_PRIVATE_KEY_FILE"), os.Getenv("JWT_PUBLIC_KEY_FILE"); priv != "" && pub != "" {
		if err := auth.InitFromPath(priv, pub); err != nil {
			log.Fatalf("failed to load jwt keys: %v", err)
		}
	} else {
		auth.Init()
	}
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// live registry fed by the session gateway
	registry := live.NewRegistry()
	gateway, err := realtime.DialGateway(ctx, cfg.GatewayURL, logger)
	if err != nil {
		log.Fatalf("gateway dial failed: %v", err)
	}
	defer gateway.Close()
	go func() {
		for ev := range gateway.Events() {
			registry.Apply(ev)
			// session_open binds the live session to its persisted lobby
			if ev.Type == realtime.EventSessionOpen {
				if lobbyID, err := uuid.Parse(ev.LobbyID); err == nil {
					if err := database.SetSession(ctx, lobbyID, ev.SessionID); err != nil {
						logger.Warnf("failed to persist session binding: %v", err)
					}
				}
			}
			logger.WithFields(logrus.Fields{
				"type":    ev.Type,
				"session": ev.SessionID,
			}).Debug("applied session event")
		}
	}()

	// interactive operations
	store := database.LobbyStore{}
	svc := interactions.NewService(store, registry, gateway, cfg.ClaimLockout(), logger)
	dispatcher := interactions.NewDispatcher(logger)
	svc.RegisterHandlers(dispatcher)

	api := handlers.NewAPIServer(logger, store, registry, dispatcher)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{Addr: addr, Handler: api.Routes()}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	logger.Infof("Running on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server exited: %v", err)
	}
}
