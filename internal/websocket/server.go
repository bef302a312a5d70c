// Package websocket pushes session updates and transcript lines to
// dashboard clients.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// Message is the envelope for all server-to-client pushes.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// client is one connected dashboard.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Server is the WebSocket broadcast hub. All pushes are fire-and-forget;
// a client that cannot keep up is dropped.
type Server struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

// NewServer creates the hub.
func NewServer(log *logger.Logger) *Server {
	return &Server{
		logger: log.Named("websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// HandleWS upgrades the connection and registers the client.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade websocket connection", logger.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	s.mu.Lock()
	s.clients[c.id] = c
	count := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("WebSocket client connected",
		logger.String("client_id", c.id),
		logger.Int("clients", count),
	)

	go s.writePump(c)
	go s.readPump(c)
}

// Broadcast marshals the message once and fans it out to every client.
// Clients with a full send buffer are dropped rather than blocking the
// caller.
func (s *Server) Broadcast(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to marshal websocket message", logger.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.logger.Debug("Dropping slow websocket client", logger.String("client_id", id))
			close(c.send)
			delete(s.clients, id)
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects all clients.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		close(c.send)
		delete(s.clients, id)
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c.id]; ok {
		close(c.send)
		delete(s.clients, c.id)
	}
	count := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("WebSocket client disconnected",
		logger.String("client_id", c.id),
		logger.Int("clients", count),
	)
}

// readPump drains inbound frames to process control messages. Clients do
// not send application data; anything received is discarded.
func (s *Server) readPump(c *client) {
	defer func() {
		s.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
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
