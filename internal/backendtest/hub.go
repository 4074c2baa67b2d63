package backendtest

import (
	"net/http"
	"sync"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// pushEvent is the wire form of a server-initiated invalidation.
type pushEvent struct {
	Type   string `json:"type"`
	Prefix string `json:"prefix,omitempty"`
}

// hub tracks live websocket connections keyed by the authenticated principal.
type hub struct {
	mu          sync.RWMutex
	connections map[models.Principal]*websocket.Conn
}

func newHub() *hub {
	return &hub{connections: make(map[models.Principal]*websocket.Conn)}
}

func (h *hub) register(user models.Principal, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.connections[user]; ok {
		existing.Close()
	}
	h.connections[user] = conn
}

func (h *hub) unregister(user models.Principal, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[user] == conn {
		conn.Close()
		delete(h.connections, user)
	}
}

func (h *hub) sendToUser(user models.Principal, ev pushEvent) {
	h.mu.RLock()
	conn, ok := h.connections[user]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := conn.WriteJSON(ev); err != nil {
		log.Debug().Err(err).Str("user", user.String()).Msg("Failed to push event")
	}
}

func (h *hub) broadcast(ev pushEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for user, conn := range h.connections {
		if err := conn.WriteJSON(ev); err != nil {
			log.Debug().Err(err).Str("user", user.String()).Msg("Failed to push event")
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for user, conn := range h.connections {
		conn.Close()
		delete(h.connections, user)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	caller, err := s.validateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.register(caller, conn)

	go func() {
		defer s.hub.unregister(caller, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
