package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// ChatEvent is fanned out to every open socket of a user whenever the
// bot finishes a turn, so a web client doesn't have to poll the
// transcript.
type ChatEvent struct {
	Type          string          `json:"type"` // "bot_reply"
	Reply         string          `json:"reply"`
	TransactionID *string         `json:"transaction_id"`
	Data          *AnalysisResult `json:"data,omitempty"`
}

type WSClient struct {
	UserIdentifier string
	Conn           *websocket.Conn
}

type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[string]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserIdentifier] == nil {
		h.clients[c.UserIdentifier] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserIdentifier][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserIdentifier]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserIdentifier)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

func (h *RealtimeHub) BroadcastTurn(userIdentifier string, ev ChatEvent) {
	msg, _ := json.Marshal(ev)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userIdentifier] {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
