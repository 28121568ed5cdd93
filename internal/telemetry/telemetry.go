// Package telemetry relays event.Event notifications to a connected monitor
// process over a websocket, grounded on the pack's websocket-serving repos
// (n0remac-Light-Speed-Duel/internal/server, onuse-worldgenerator_go/server.go)
// generalized from per-client game state to a one-way event feed: the core
// never blocks on this, per spec.md's "the core never suspends on I/O".
package telemetry

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"shipbreaker/internal/event"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireEvent is the JSON frame shape sent over the wire. event.Event's Kind
// values are rendered as strings so a monitor doesn't need the Go iota
// ordering to decode them.
type wireEvent struct {
	Kind string `json:"kind"`
	event.Event
}

var kindNames = map[event.Kind]string{
	event.KindGameReset:                     "game_reset",
	event.KindShipLoaded:                    "ship_loaded",
	event.KindTsunami:                       "tsunami",
	event.KindDestroy:                       "destroy",
	event.KindCombustionBegin:               "combustion_begin",
	event.KindCombustionEnd:                 "combustion_end",
	event.KindSwitchCreated:                 "switch_created",
	event.KindPowerProbeCreated:              "power_probe_created",
	event.KindSwitchToggled:                 "switch_toggled",
	event.KindSwitchEnabled:                 "switch_enabled",
	event.KindPowerProbeToggled:              "power_probe_toggled",
	event.KindFrameRate:                     "frame_rate",
	event.KindUpdateToRenderRatio:           "update_to_render_ratio",
	event.KindElectricalAnnouncementsBegin:  "electrical_announcements_begin",
	event.KindElectricalAnnouncementsEnd:    "electrical_announcements_end",
}

// Hub fans event.Event batches out to every connected monitor. It implements
// event.Dispatcher; a world.World configured with one works exactly as it
// would with a nil Dispatcher except that connected monitors now observe
// every flushed batch.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Dispatch implements event.Dispatcher. It never blocks the caller: each
// client has its own bounded outbound queue, and a client that falls behind
// is dropped rather than stalling the simulation thread.
func (h *Hub) Dispatch(events []event.Event) {
	if len(events) == 0 {
		return
	}
	frames := make([]wireEvent, len(events))
	for i, e := range events {
		frames[i] = wireEvent{Kind: kindNames[e.Kind], Event: e}
	}
	payload, err := json.Marshal(frames)
	if err != nil {
		log.Printf("telemetry: marshal events: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, queue := range h.clients {
		select {
		case queue <- payload:
		default:
			log.Printf("telemetry: client %s backed up, dropping", conn.RemoteAddr())
			h.removeLocked(conn)
		}
	}
}

// ServeHTTP upgrades the request to a websocket and registers it as a
// monitor connection until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("telemetry: upgrade: %v", err)
		return
	}

	queue := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[conn] = queue
	h.mu.Unlock()

	go h.writeLoop(conn, queue)
	h.readLoop(conn)
}

// writeLoop drains queue to the connection until it's closed.
func (h *Hub) writeLoop(conn *websocket.Conn, queue chan []byte) {
	for payload := range queue {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.mu.Lock()
			h.removeLocked(conn)
			h.mu.Unlock()
			return
		}
	}
}

// readLoop discards inbound traffic (monitors are read-only observers) and
// blocks until the connection closes, at which point the client is removed.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(conn)
		h.mu.Unlock()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// removeLocked closes conn's queue and connection and drops it from the
// client set. Caller must hold h.mu.
func (h *Hub) removeLocked(conn *websocket.Conn) {
	if queue, ok := h.clients[conn]; ok {
		close(queue)
		delete(h.clients, conn)
	}
	conn.Close()
}

// ClientCount reports how many monitors are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
