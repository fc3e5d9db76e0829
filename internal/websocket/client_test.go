package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/homebase/internal/auth"
)

func dialFeed(t *testing.T, hub *Hub, userID string) *ws.Conn {
	t.Helper()
	h := Handler(hub, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(w, r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: userID})))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLiveFeedDeliversToConnection(t *testing.T) {
	hub := NewHub(slog.Default())
	conn := dialFeed(t, hub, "alice")
	waitForClients(t, hub, 1)

	hub.Publish("alice", "task", "created", "task-1")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if typ != ws.MessageText {
		t.Errorf("message type = %v, want text", typ)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "task_created" || got.ID != "task-1" {
		t.Errorf("got %+v", got)
	}
}

func TestCloseAllDisconnectsClients(t *testing.T) {
	hub := NewHub(slog.Default())
	conn := dialFeed(t, hub, "alice")
	waitForClients(t, hub, 1)

	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	if status := ws.CloseStatus(err); status != ws.StatusGoingAway {
		t.Errorf("close status = %v (err %v), want going away", status, err)
	}
	waitForClients(t, hub, 0)
}

func TestPeerCloseUnregisters(t *testing.T) {
	hub := NewHub(slog.Default())
	conn := dialFeed(t, hub, "bob")
	waitForClients(t, hub, 1)

	conn.Close(ws.StatusNormalClosure, "bye")
	waitForClients(t, hub, 0)
}
