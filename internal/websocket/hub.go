package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/animestore-backend/internal/metrics"
	"github.com/ikkim/animestore-backend/pkg/logger"
)

const (
	broadcastBuffer = 1024
	sendBuffer      = 256
)

// Envelope is the frame written to every client.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ClientMessage is what clients may send. Customers' typing events go to
// admins; an admin names the customer in UserID.
type ClientMessage struct {
	Type   string `json:"type"` // typing_start, typing_stop
	UserID uint   `json:"user_id,omitempty"`
}

type delivery struct {
	toAdmins bool
	userID   uint
	data     []byte
}

// Hub tracks live connections per user and fans events out to a user's
// sessions or to every connected admin.
type Hub struct {
	clients map[uint]map[*Client]struct{}
	admins  map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		admins:     make(map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan delivery, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and deliveries until ctx is cancelled, then
// closes every client's send channel. Register and Unregister stop blocking
// once Run has returned.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.drainPending()
			return

		case client := <-h.register:
			h.mu.Lock()
			sessions, ok := h.clients[client.UserID]
			if !ok {
				sessions = make(map[*Client]struct{})
				h.clients[client.UserID] = sessions
			}
			sessions[client] = struct{}{}
			if client.IsAdmin {
				h.admins[client] = struct{}{}
			}
			count := len(sessions)
			h.mu.Unlock()
			metrics.WebsocketConnections.Inc()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"admin":          client.IsAdmin,
				"total_sessions": count,
			})

		case client := <-h.unregister:
			if h.remove(client) {
				metrics.WebsocketConnections.Dec()
				logger.Info("WebSocket client unregistered", map[string]interface{}{
					"user_id": client.UserID,
				})
			}

		case d := <-h.broadcast:
			h.mu.RLock()
			var targets []*Client
			if d.toAdmins {
				for c := range h.admins {
					targets = append(targets, c)
				}
			} else {
				for c := range h.clients[d.userID] {
					targets = append(targets, c)
				}
			}
			h.mu.RUnlock()

			for _, c := range targets {
				select {
				case c.send <- d.data:
				default:
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": c.UserID,
					})
					go h.Unregister(c)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	sessions, ok := h.clients[client.UserID]
	if !ok {
		return false
	}
	if _, ok := sessions[client]; !ok {
		return false
	}
	delete(sessions, client)
	if len(sessions) == 0 {
		delete(h.clients, client.UserID)
	}
	delete(h.admins, client)
	close(client.send)
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, sessions := range h.clients {
		for c := range sessions {
			close(c.send)
			metrics.WebsocketConnections.Dec()
		}
		delete(h.clients, userID)
	}
	h.admins = make(map[*Client]struct{})
}

// drainPending closes the send channels of clients that were queued for
// registration when the hub stopped.
func (h *Hub) drainPending() {
	for {
		select {
		case client := <-h.register:
			close(client.send)
		default:
			return
		}
	}
}

// Register queues the client and reports false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishToAdmins delivers an event to every connected admin session.
func (h *Hub) PublishToAdmins(event string, payload interface{}) {
	h.enqueue(delivery{toAdmins: true}, event, payload)
}

// PublishToUser delivers an event to every session of one user.
func (h *Hub) PublishToUser(userID uint, event string, payload interface{}) {
	h.enqueue(delivery{userID: userID}, event, payload)
}

func (h *Hub) enqueue(d delivery, event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: event, Data: payload})
	if err != nil {
		logger.Error("Failed to marshal websocket event", err, map[string]interface{}{
			"event": event,
		})
		return
	}
	d.data = data

	select {
	case h.broadcast <- d:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"event": event,
		})
	}
}

// IsUserOnline reports whether the user has at least one open session.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// OnlineAdmins returns the number of connected admin sessions.
func (h *Hub) OnlineAdmins() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.admins)
}

// HandleClientMessage relays typing indicators. Anything else is ignored.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	if !client.limiter.Allow() {
		logger.Warn("WebSocket rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}
	if msg.Type != "typing_start" && msg.Type != "typing_stop" {
		return
	}

	if client.IsAdmin {
		if msg.UserID == 0 {
			return
		}
		h.PublishToUser(msg.UserID, msg.Type, map[string]interface{}{"from": "admin"})
		return
	}
	h.PublishToAdmins(msg.Type, map[string]interface{}{"user_id": client.UserID})
}
