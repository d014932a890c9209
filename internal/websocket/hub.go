package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	MessageTick     = "tick"
	MessageRollover = "rollover"
	MessagePing     = "ping"
	MessagePong     = "pong"

	sendBufferSize = 16
)

// Message is the envelope of every frame sent to clients
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ClientMessage is a frame received from a client
type ClientMessage struct {
	Type string `json:"type"`
}

// Client is one websocket subscriber
type Client struct {
	ID            string
	Hub           *Hub
	Conn          *Conn
	Send          chan []byte
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBufferSize),
	}
}

// Hub fans broadcast frames out to every connected client
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 256),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Debug("WebSocket client registered", map[string]interface{}{
				"client_id": client.ID,
				"clients":   total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Debug("WebSocket client unregistered", map[string]interface{}{
				"client_id": client.ID,
				"clients":   total,
			})

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// slow consumer
					delete(h.clients, client)
					close(client.Send)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"client_id": client.ID,
					})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a message for every client. Messages are dropped when the
// queue is full.
func (h *Hub) Broadcast(msgType string, data interface{}) error {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		logger.Error("Failed to marshal message", err, map[string]interface{}{
			"type": msgType,
		})
		return err
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"type": msgType,
		})
	}
	return nil
}

// RunTicker broadcasts a tick built by payload every interval while clients are connected
func (h *Hub) RunTicker(ctx context.Context, interval time.Duration, payload func() interface{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			_ = h.Broadcast(MessageTick, payload())
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage answers pings; anything else is ignored
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"client_id": client.ID,
			"count":     count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Debug("Failed to parse client message", map[string]interface{}{
			"client_id": client.ID,
			"error":     err.Error(),
		})
		return
	}

	if msg.Type != MessagePing {
		return
	}

	payload, _ := json.Marshal(Message{Type: MessagePong})
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}
