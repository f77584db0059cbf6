package sync

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 2 * time.Second

type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string
	logger  *zap.Logger
}

type Stats struct {
	WSClients int `json:"ws_clients"`
	Users     int `json:"users"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		logger:  logger.Named("sync"),
	}
}

// AddWS registers a connection. userID may be empty for anonymous clients,
// which only receive events without a user.
func (h *Hub) AddWS(ws *websocket.Conn, userID string) {
	h.mu.Lock()
	h.clients[ws] = userID
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Publish sends ev to every connection of ev.UserID. Safe on a nil Hub.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws, userID := range h.clients {
		if ev.UserID != "" && userID != ev.UserID {
			continue
		}
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			h.logger.Debug("dropping websocket client", zap.Error(err))
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	users := make(map[string]struct{})
	for _, u := range h.clients {
		if u != "" {
			users[u] = struct{}{}
		}
	}
	return Stats{WSClients: len(h.clients), Users: len(users)}
}
