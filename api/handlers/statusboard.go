package handlers

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/models"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust CORS as needed, e.g., check r.Header.Get("Origin")
	},
}

// StatusBoard pushes inspector status changes to connected dispatch consoles.
// Connections are keyed by a server-generated id; every event goes to every
// connected console.
type StatusBoard struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

// NewStatusBoard creates an empty hub.
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		clients: make(map[string]*websocket.Conn),
	}
}

// Handle upgrades the request and keeps the connection registered until the
// client goes away.
func (s *StatusBoard) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.New().String()

	s.mutex.Lock()
	s.clients[clientID] = conn
	s.mutex.Unlock()
	zap.S().Debugf("status board client %s connected", clientID)

	conn.SetCloseHandler(func(code int, text string) error {
		s.mutex.Lock()
		delete(s.clients, clientID)
		s.mutex.Unlock()
		zap.S().Debugf("status board client %s disconnected", clientID)
		return nil
	})

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			s.mutex.Lock()
			delete(s.clients, clientID)
			s.mutex.Unlock()
			conn.Close()
			break
		}
	}
}

// BroadcastStatusChange fans an inspector status event out to every connected
// console. Dead connections are dropped on write failure.
func (s *StatusBoard) BroadcastStatusChange(inspectorID string, status models.InspectorStatus) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for clientID, conn := range s.clients {
		err := conn.WriteJSON(map[string]interface{}{
			"event": "inspector_status",
			"data": map[string]interface{}{
				"inspectorId": inspectorID,
				"status":      status,
			},
		})
		if err != nil {
			zap.S().Warnw("failed to push status event, dropping client",
				"clientID", clientID, "error", err)
			delete(s.clients, clientID)
			conn.Close()
		}
	}
}
