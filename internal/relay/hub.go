// Package relay carries the shared sync medium across processes: each
// session's slot writes and deletes are forwarded over a websocket hub to
// every other connected session, mirroring the notify-others-only semantics
// the broadcast protocol expects from its medium.
package relay

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans medium frames out to connected sessions. Delivery is
// fire-and-forget; a client that cannot keep up is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

type Stats struct {
	Clients int `json:"clients"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// BroadcastExcept forwards one frame to every client but the sender. The
// sender already observed its own write locally.
func (h *Hub) BroadcastExcept(sender *websocket.Conn, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients {
		if ws == sender {
			continue
		}
		if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Clients: len(h.clients)}
}
