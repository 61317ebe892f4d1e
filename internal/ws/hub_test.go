package ws_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lendora/auction/internal/domain"
	"github.com/lendora/auction/internal/ws"
)

// TestHubEmitDeliversToConnectedClient connects one anonymous client over a
// real WebSocket and verifies an unscoped auction event reaches it.
func TestHubEmitDeliversToConnectedClient(t *testing.T) {
	hub := ws.NewHub(nil, nil)
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Registration goes through the hub's event loop; wait for it to land.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	auctionID := uuid.New()
	hub.Emit(domain.AuctionEvent{
		Type:      domain.EventAuctionStarted,
		AuctionID: auctionID,
		Payload:   map[string]any{"timeout_minutes": 15},
		Timestamp: time.Now().UTC(),
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg ws.AuctionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != ws.MsgTypeAuctionStarted {
		t.Errorf("type = %s, want %s", msg.Type, ws.MsgTypeAuctionStarted)
	}
	if msg.AuctionID != auctionID {
		t.Errorf("auction id = %s, want %s", msg.AuctionID, auctionID)
	}
}

// TestHubTenantScoping checks that a tenant-scoped event is not delivered to
// an anonymous client.
func TestHubTenantScoping(t *testing.T) {
	hub := ws.NewHub(nil, nil)
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Emit(domain.AuctionEvent{
		Type:      domain.EventAuctionCompleted,
		AuctionID: uuid.New(),
		TenantID:  "tenant-1",
		Timestamp: time.Now().UTC(),
	})

	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("anonymous client received a tenant-scoped event")
	}
}
