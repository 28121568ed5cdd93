package telemetry

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"shipbreaker/internal/event"
)

func dialHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(h)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func waitForClient(t *testing.T, h *Hub) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for client registration")
}

func TestDispatchDeliversEventsToConnectedClient(t *testing.T) {
	h := NewHub()
	conn, closeAll := dialHub(t, h)
	defer closeAll()
	waitForClient(t, h)

	h.Dispatch([]event.Event{event.ShipLoaded(7, "Tug", "Anon"), event.Tsunami(12.5)})

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frames []map[string]interface{}
	if err := json.Unmarshal(data, &frames); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0]["kind"] != "ship_loaded" || frames[0]["ShipID"].(float64) != 7 {
		t.Fatalf("unexpected first frame: %v", frames[0])
	}
	if frames[1]["kind"] != "tsunami" || frames[1]["TsunamiX"].(float64) != 12.5 {
		t.Fatalf("unexpected second frame: %v", frames[1])
	}
}

func TestDispatchWithNoClientsDoesNotBlock(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Dispatch([]event.Event{event.GameReset()})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked with no clients connected")
	}
}

func TestClientDisconnectRemovesIt(t *testing.T) {
	h := NewHub()
	conn, closeAll := dialHub(t, h)
	waitForClient(t, h)

	conn.Close()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && h.ClientCount() != 0 {
		h.Dispatch([]event.Event{event.GameReset()})
		time.Sleep(10 * time.Millisecond)
	}
	if h.ClientCount() != 0 {
		t.Fatalf("expected client to be removed after disconnect, count=%d", h.ClientCount())
	}
	closeAll()
}
