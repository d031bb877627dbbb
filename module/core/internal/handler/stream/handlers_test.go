package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func setupServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, hub)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func waitForClients(t *testing.T, hub *Hub, channel string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(channel) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients on %s, got %d", n, channel, hub.ClientCount(channel))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamHandlers_UpgradeRequired(t *testing.T) {
	srv := setupServer(t, NewHub())

	resp, err := http.Get(srv.URL + "/ws/positions")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatal("expected non-200 for non-websocket request")
	}
}

func TestStreamHandlers_UnknownChannel(t *testing.T) {
	srv := setupServer(t, NewHub())

	resp, err := http.Get(srv.URL + "/ws/vehicles")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStreamHandlers_WebsocketBroadcast(t *testing.T) {
	hub := NewHub()
	srv := setupServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, ChannelProgress, 1)

	hub.Broadcast(ChannelProgress, []byte(`{"percentage":60}`))
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != `{"percentage":60}` {
		t.Fatalf("unexpected message %s", msg)
	}
}

func TestStreamHandlers_CloseUnregisters(t *testing.T) {
	hub := NewHub()
	srv := setupServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/errors"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	waitForClients(t, hub, ChannelErrors, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	waitForClients(t, hub, ChannelErrors, 0)
}
