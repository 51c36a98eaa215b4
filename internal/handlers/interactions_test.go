// internal/handlers/interactions_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/interactions"
	"github.com/arbiter-gg/arbiter/internal/live"
)

func testServer(t *testing.T) *APIServer {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	d := interactions.NewDispatcher(logger)
	d.Register("ping", func(ctx context.Context, ev interactions.Event) interactions.Reply {
		return interactions.Reply{Content: "pong"}
	})

	return NewAPIServer(logger, nil, live.NewRegistry(), d)
}

func TestInteractionsHandlerRepliesOnce(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/interactions",
		strings.NewReader(`{"action_id":"ping","message_id":"msg-1"}`))
	w := httptest.NewRecorder()
	s.InteractionsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var reply interactions.Reply
	if err := json.NewDecoder(w.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Content != "pong" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestInteractionsHandlerUnknownActionStillReplies(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/interactions",
		strings.NewReader(`{"action_id":"nope"}`))
	w := httptest.NewRecorder()
	s.InteractionsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var reply interactions.Reply
	if err := json.NewDecoder(w.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Content == "" {
		t.Fatal("empty reply for unknown action")
	}
}

func TestInteractionsHandlerRejectsBadRequests(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/interactions", nil)
	w := httptest.NewRecorder()
	s.InteractionsHandler(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader("{"))
	w = httptest.NewRecorder()
	s.InteractionsHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(`{"message_id":"m"}`))
	w = httptest.NewRecorder()
	s.InteractionsHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing action status = %d", w.Code)
	}
}
