// Package live pushes bracket updates to dashboard clients over websockets.
// Clients join one room per tournament; the services broadcast the fresh
// category state after every generation or result.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.room] == nil {
		h.rooms[c.room] = make(map[*Client]struct{})
	}
	h.rooms[c.room][c] = struct{}{}
	slog.Debug("websocket client joined", "room", c.room, "clients", len(h.rooms[c.room]))
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.room)
	}
}

// BroadcastToRoom sends the message to every client watching the tournament.
// Clients that cannot keep up are dropped rather than blocking the caller.
func (h *Hub) BroadcastToRoom(room string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal websocket message", "room", room, "error", err)
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		slog.Warn("dropping slow websocket client", "room", room)
		h.leave(c)
	}
}
