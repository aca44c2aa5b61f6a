package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gemini-chat/internal/middleware"
	"gemini-chat/internal/models"
)

func withSession(id uuid.UUID, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.SessionIDKey, id)
		next(w, r.WithContext(ctx))
	})
}

func TestHub_PublishReachesSessionSockets(t *testing.T) {
	hub := NewHub(nil)
	sessionID := uuid.New()

	srv := httptest.NewServer(withSession(sessionID, hub.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections(sessionID) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Connections(sessionID) != 1 {
		t.Fatalf("expected 1 registered connection, got %d", hub.Connections(sessionID))
	}

	// Events for other sessions must not arrive on this socket.
	hub.Publish(context.Background(), uuid.New(), models.WSMessage{Type: models.EventCleared})
	hub.Publish(context.Background(), sessionID, models.WSMessage{
		Type:    models.EventThinking,
		Payload: models.StatusUpdate{SessionID: sessionID, Status: "Bot is thinking..."},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}

	var got struct {
		Type    string              `json:"type"`
		Payload models.StatusUpdate `json:"payload"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if got.Type != models.EventThinking || got.Payload.SessionID != sessionID {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestHub_RejectsRequestWithoutSession(t *testing.T) {
	hub := NewHub(nil)

	rr := httptest.NewRecorder()
	hub.HandleWebSocket(rr, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
