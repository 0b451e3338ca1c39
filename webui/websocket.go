// This file contains the Broadcaster molecule that manages WebSocket client
// connections and pushes generation lifecycle events to all of them.
package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// BroadcasterConfig holds tuning knobs for the Broadcaster.
type BroadcasterConfig struct {
	// PingInterval is how often to send ping messages (default: 30s)
	PingInterval time.Duration

	// PongWait is how long to wait for a pong response (default: 60s)
	PongWait time.Duration

	// WriteWait is the time allowed to write a message (default: 10s)
	WriteWait time.Duration

	// MaxMessageSize is the max message size from a client (default: 512)
	MaxMessageSize int64

	// BroadcastBufferSize is the broadcast channel buffer (default: 256)
	BroadcastBufferSize int

	// Logger for connection events (default: no-op)
	Logger *zap.Logger
}

// DefaultBroadcasterConfig returns the default configuration.
func DefaultBroadcasterConfig() BroadcasterConfig {
	return BroadcasterConfig{
		PingInterval:        30 * time.Second,
		PongWait:            60 * time.Second,
		WriteWait:           10 * time.Second,
		MaxMessageSize:      512,
		BroadcastBufferSize: 256,
	}
}

// Broadcaster manages WebSocket client connections and fan-out of messages.
// Clients only listen; inbound frames beyond pongs are discarded.
//
// Thread-safe for concurrent connections and broadcasts.
type Broadcaster struct {
	clients    map[*websocket.Conn]chan []byte
	clientsMu  sync.RWMutex
	broadcast  chan WSMessage
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	upgrader   websocket.Upgrader
	config     BroadcasterConfig
	logger     *zap.Logger
}

// NewBroadcaster creates a Broadcaster. Call Start to begin fan-out.
func NewBroadcaster(config BroadcasterConfig) *Broadcaster {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Broadcaster{
		clients:    make(map[*websocket.Conn]chan []byte),
		broadcast:  make(chan WSMessage, config.BroadcastBufferSize),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		config:     config,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same-origin deployment; the dashboard page is served by
			// this process.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start runs the fan-out loop until the context is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	pingTicker := time.NewTicker(b.config.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return
		case conn := <-b.register:
			b.addClient(conn)
		case conn := <-b.unregister:
			b.removeClient(conn)
		case msg := <-b.broadcast:
			b.fanOut(msg)
		case <-pingTicker.C:
			b.pingAll()
		}
	}
}

// HandleConnection upgrades an HTTP request to a WebSocket connection and
// manages the client lifecycle.
func (b *Broadcaster) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed",
			zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	conn.SetReadLimit(b.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(b.config.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(b.config.PongWait))
		return nil
	})

	b.register <- conn
	go b.readPump(conn)
}

// Broadcast queues a message for delivery to all clients. Non-blocking; the
// message is dropped when the buffer is full.
func (b *Broadcaster) Broadcast(msg WSMessage) {
	select {
	case b.broadcast <- msg:
	default:
		b.logger.Warn("broadcast buffer full, dropping message",
			zap.String("type", msg.Type))
	}
}

// BroadcastGeneration broadcasts a generation lifecycle event.
func (b *Broadcaster) BroadcastGeneration(data GenerationEventData) {
	b.Broadcast(NewGenerationMessage(data))
}

// BroadcastGPUUpdate broadcasts a GPU metrics update.
func (b *Broadcaster) BroadcastGPUUpdate(data GPUUpdateData) {
	b.Broadcast(NewGPUUpdateMessage(data))
}

// BroadcastSystemStatus broadcasts a system status update.
func (b *Broadcaster) BroadcastSystemStatus(data SystemStatusData) {
	b.Broadcast(NewSystemStatusMessage(data))
}

// ClientCount returns the current number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) addClient(conn *websocket.Conn) {
	b.clientsMu.Lock()
	defer b.clientsMu.Unlock()

	send := make(chan []byte, 64)
	b.clients[conn] = send
	go b.writePump(conn, send)

	b.logger.Debug("websocket client connected",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.Int("total", len(b.clients)))
}

func (b *Broadcaster) removeClient(conn *websocket.Conn) {
	b.clientsMu.Lock()
	defer b.clientsMu.Unlock()

	if send, ok := b.clients[conn]; ok {
		close(send)
		delete(b.clients, conn)
		conn.Close()
		b.logger.Debug("websocket client disconnected",
			zap.Int("total", len(b.clients)))
	}
}

func (b *Broadcaster) fanOut(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("cannot marshal broadcast message", zap.Error(err))
		return
	}

	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()

	for conn, send := range b.clients {
		select {
		case send <- data:
		default:
			// Slow client; drop the connection rather than block.
			go func(c *websocket.Conn) { b.unregister <- c }(conn)
		}
	}
}

func (b *Broadcaster) pingAll() {
	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()

	for conn := range b.clients {
		conn.SetWriteDeadline(time.Now().Add(b.config.WriteWait))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			go func(c *websocket.Conn) { b.unregister <- c }(conn)
		}
	}
}

func (b *Broadcaster) closeAll() {
	b.clientsMu.Lock()
	defer b.clientsMu.Unlock()

	for conn, send := range b.clients {
		close(send)
		conn.Close()
		delete(b.clients, conn)
	}
}

// readPump consumes client frames to keep pong handling alive.
func (b *Broadcaster) readPump(conn *websocket.Conn) {
	defer func() { b.unregister <- conn }()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				b.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (b *Broadcaster) writePump(conn *websocket.Conn, send <-chan []byte) {
	defer conn.Close()

	for message := range send {
		conn.SetWriteDeadline(time.Now().Add(b.config.WriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	conn.SetWriteDeadline(time.Now().Add(b.config.WriteWait))
	conn.WriteMessage(websocket.CloseMessage, []byte{})
}
