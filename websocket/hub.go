package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one socket of a signed-in user. A user may hold several.
type Client struct {
	Hub    *Hub
	UserID uint
	Role   string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub tracks live sockets per user and fans notifications out to them.
type Hub struct {
	clients map[uint]map[*Client]struct{}

	Register   chan *Client
	Unregister chan *Client

	// MessageHandlers handle frames sent by clients, keyed by Message.Type.
	MessageHandlers map[string]MessageHandler

	mu sync.RWMutex
}

// Message is the frame format in both directions.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type MessageHandler func(*Client, *Message) error

func NewHub() *Hub {
	hub := &Hub{
		clients:         make(map[uint]map[*Client]struct{}),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
		MessageHandlers: make(map[string]MessageHandler),
	}
	hub.MessageHandlers["ping"] = hub.handlePing
	return hub
}

// Run serves register and unregister requests until ctx is done, then closes
// every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]struct{})
			}
			h.clients[client.UserID][client] = struct{}{}
			h.mu.Unlock()
			zap.L().Debug("websocket client registered", zap.Uint("user_id", client.UserID), zap.String("role", client.Role))

		case client := <-h.Unregister:
			h.remove(client)
			zap.L().Debug("websocket client unregistered", zap.Uint("user_id", client.UserID))

		case <-ctx.Done():
			h.mu.Lock()
			for userID, set := range h.clients {
				for client := range set {
					close(client.Send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
}

// SendToUser pushes a message to every socket the user has open. Users
// without a live socket still see the stored notification on their next poll.
func (h *Hub) SendToUser(userID uint, msgType string, data interface{}) {
	payload, err := json.Marshal(&Message{Type: msgType, Timestamp: time.Now(), Data: data})
	if err != nil {
		zap.L().Error("failed to marshal websocket message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
			zap.L().Warn("websocket send buffer full, dropping message", zap.Uint("user_id", userID))
		}
	}
}

// ConnectedUsers returns the ids of users with at least one open socket.
func (h *Hub) ConnectedUsers() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uint, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	return users
}

func (h *Hub) IsUserConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) handlePing(client *Client, _ *Message) error {
	return client.SendMessage(&Message{Type: "pong", Timestamp: time.Now()})
}
