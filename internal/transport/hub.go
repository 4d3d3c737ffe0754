// Package transport carries night.Engine traffic over websocket
// connections. It keeps wolverix's hub/client channel architecture
// almost verbatim — register/unregister/broadcast loop, per-room client
// set, ping/pong keepalive — but the payloads it carries are now
// night.BroadcastGameState snapshots and night.PrivateEffectPayload
// reveals instead of the old free-form game-update messages.
package transport

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nightloom/nightcore/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// IncomingAction is one client-submitted WSTypeNightAction message, handed
// off to whatever the hub's owner wired as the action dispatcher.
type IncomingAction struct {
	UserID  uuid.UUID
	RoomID  uuid.UUID
	Payload json.RawMessage
}

// Hub maintains active websocket connections and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[uuid.UUID]map[*Client]bool
	broadcast  chan *BroadcastMessage
	register   chan *Client
	unregister chan *Client
	actions    chan IncomingAction
	mu         sync.RWMutex

	// ActionHandler, if set, receives every WSTypeNightAction message a
	// client sends. Wired by cmd/server to the room's GameManager so a
	// night.PlayerMessage can be submitted without a REST round trip.
	ActionHandler func(IncomingAction)

	// ActiveConnections, if set, tracks open connections for /metrics.
	ActiveConnections prometheus.Gauge
}

// BroadcastMessage represents a message to be broadcast.
type BroadcastMessage struct {
	RoomID    uuid.UUID
	Message   models.WSMessage
	ToPlayers []uuid.UUID // If set, only send to these players
	Exclude   *uuid.UUID  // Optional: exclude this user from broadcast
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan *BroadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		actions:    make(chan IncomingAction, 256),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("transport: hub shutting down")
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastToRoom(message)
		case action := <-h.actions:
			if h.ActionHandler != nil {
				h.ActionHandler(action)
			}
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if client.RoomID != uuid.Nil {
		if h.rooms[client.RoomID] == nil {
			h.rooms[client.RoomID] = make(map[*Client]bool)
		}
		h.rooms[client.RoomID][client] = true
		log.Printf("transport: client %s joined room %s", client.UserID, client.RoomID)
	}
	if h.ActiveConnections != nil {
		h.ActiveConnections.Inc()
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		if client.RoomID != uuid.Nil {
			if clients, ok := h.rooms[client.RoomID]; ok {
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.rooms, client.RoomID)
				}
			}
		}
		log.Printf("transport: client %s disconnected from room %s", client.UserID, client.RoomID)
		if h.ActiveConnections != nil {
			h.ActiveConnections.Dec()
		}
	}
}

func (h *Hub) broadcastToRoom(message *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[message.RoomID]
	if !ok {
		return
	}

	messageJSON, err := json.Marshal(message.Message)
	if err != nil {
		log.Printf("transport: error marshaling message: %v", err)
		return
	}

	targetSet := make(map[uuid.UUID]bool)
	for _, id := range message.ToPlayers {
		targetSet[id] = true
	}

	for client := range clients {
		if message.Exclude != nil && client.UserID == *message.Exclude {
			continue
		}
		if len(targetSet) > 0 && !targetSet[client.UserID] {
			continue
		}

		select {
		case client.send <- messageJSON:
		default:
			close(client.send)
			delete(h.clients, client)
			delete(clients, client)
		}
	}
}

// BroadcastToRoom sends a message to all clients in a room.
func (h *Hub) BroadcastToRoom(roomID uuid.UUID, msgType models.WSMessageType, payload interface{}) {
	h.broadcast <- &BroadcastMessage{
		RoomID:  roomID,
		Message: models.WSMessage{Type: msgType, Payload: payload, Timestamp: time.Now()},
	}
}

// BroadcastToPlayers sends a message to specific players in a room.
func (h *Hub) BroadcastToPlayers(roomID uuid.UUID, playerIDs []uuid.UUID, msgType models.WSMessageType, payload interface{}) {
	h.broadcast <- &BroadcastMessage{
		RoomID:    roomID,
		Message:   models.WSMessage{Type: msgType, Payload: payload, Timestamp: time.Now()},
		ToPlayers: playerIDs,
	}
}

// SendToUser sends a message to a specific user.
func (h *Hub) SendToUser(roomID, userID uuid.UUID, msgType models.WSMessageType, payload interface{}) {
	h.BroadcastToPlayers(roomID, []uuid.UUID{userID}, msgType, payload)
}

// GetRoomClientCount returns the number of clients in a room.
func (h *Hub) GetRoomClientCount(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// GetRoomUserIDs returns all user IDs in a room.
func (h *Hub) GetRoomUserIDs(roomID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var userIDs []uuid.UUID
	for client := range h.rooms[roomID] {
		userIDs = append(userIDs, client.UserID)
	}
	return userIDs
}

// Client represents a websocket client connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	UserID uuid.UUID
	RoomID uuid.UUID
}

// NewClient creates a new websocket client.
func NewClient(hub *Hub, conn *websocket.Conn, userID, roomID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		UserID: userID,
		RoomID: roomID,
	}
}

// Register registers the client with the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("transport: websocket error: %v", err)
			}
			break
		}

		var wsMsg models.WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("transport: error parsing message: %v", err)
			continue
		}

		switch wsMsg.Type {
		case models.WSTypePing:
			pongMsg := models.WSMessage{Type: models.WSTypePong, Timestamp: time.Now()}
			if data, err := json.Marshal(pongMsg); err == nil {
				c.send <- data
			}
		case models.WSTypeNightAction:
			payload, err := json.Marshal(wsMsg.Payload)
			if err != nil {
				continue
			}
			c.hub.actions <- IncomingAction{UserID: c.UserID, RoomID: c.RoomID, Payload: payload}
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
