package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans out session and order events to connected kitchen and staff
// displays. It satisfies services.Notifier.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		log:     log,
	}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
	h.log.WithFields(logrus.Fields{"role": role, "clients": len(h.clients)}).Debug("kds client registered")
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish sends the event to every client. Clients that fail a write are
// dropped.
func (h *Hub) Publish(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("marshal kds message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.log.WithFields(logrus.Fields{"event": event, "clients": len(h.clients)}).Debug("broadcasting")
	for conn, role := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.WithError(err).WithField("role", role).Warn("dropping kds client")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Serve registers conn and blocks reading until the client disconnects.
func (h *Hub) Serve(conn *websocket.Conn, role string) {
	h.Register(conn, role)
	defer h.Unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
