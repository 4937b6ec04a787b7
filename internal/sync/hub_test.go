package sync

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"lnreader/pkg/logger"
)

func TestHubBroadcastsToWebsocketClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Discard()

	hub := NewHub()
	router := gin.New()
	router.GET("/ws", WSHandler(hub))

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, welcome, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if !strings.Contains(string(welcome), `"welcome"`) {
		t.Fatalf("unexpected welcome: %s", welcome)
	}

	// the welcome is written after registration, so the client is in the hub
	if got := hub.Stats().WSClients; got != 1 {
		t.Fatalf("WSClients = %d, want 1", got)
	}

	hub.BroadcastJSON(CatalogEvent{Type: CatalogRefreshEvent, Added: []string{"boxnovel"}, Total: 1})

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev CatalogEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != CatalogRefreshEvent || len(ev.Added) != 1 || ev.Added[0] != "boxnovel" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
