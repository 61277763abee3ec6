package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Message is one websocket frame in either direction.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewMessage(typ string, data any) (Message, error) {
	if data == nil {
		return Message{Type: typ}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Data: raw}, nil
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans session events out to the websocket connections of that session.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(logger *zap.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// Publish queues msg for every connection of sessionID. Connections that
// cannot keep up are dropped.
func (h *Hub) Publish(sessionID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal websocket message", zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients[sessionID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client", zap.String("sessionId", sessionID))
		h.unregister(sessionID, c)
	}
}

func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Serve upgrades the request and blocks until the connection ends. Frames
// sent by the client are passed to onFrame.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string, onFrame func(Message)) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(sessionID, c)
	go h.writePump(c)

	defer h.unregister(sessionID, c)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Websocket closed", zap.String("sessionId", sessionID), zap.Error(err))
			}
			return nil
		}
		if onFrame != nil && msg.Type != "" {
			onFrame(msg)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[string]map[*client]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			close(c.send)
		}
	}
}

func (h *Hub) register(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[sessionID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[sessionID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[sessionID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, sessionID)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
