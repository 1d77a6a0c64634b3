// internal/events/hub.go
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dishflow/shiftbot/internal/models"
)

// Event — событие жизненного цикла смены для панели владельца.
type Event struct {
	Type          string    `json:"type"`
	IdentityID    int64     `json:"identity_id"`
	PersonName    string    `json:"person_name"`
	Role          string    `json:"role"`
	Place         string    `json:"place"`
	DurationHours float64   `json:"duration_hours,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Hub рассылает события смен всем подключённым websocket-клиентам.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
	go h.run()
	return h
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) publish(ev Event) {
	data, _ := json.Marshal(ev)
	h.broadcast <- data
}

// ShiftStarted — сотрудник открыл смену.
func (h *Hub) ShiftStarted(a models.RoleAssignment, at time.Time) {
	h.publish(Event{
		Type:       "shift_started",
		IdentityID: a.IdentityID,
		PersonName: a.PersonName,
		Role:       string(a.Role),
		Place:      a.Place,
		Timestamp:  at,
	})
}

// ShiftEnded — смена закрыта и записана в леджер.
func (h *Hub) ShiftEnded(rec *models.ShiftRecord) {
	h.publish(Event{
		Type:          "shift_ended",
		IdentityID:    rec.IdentityID,
		PersonName:    rec.PersonName,
		Role:          string(rec.Role),
		Place:         rec.Place,
		DurationHours: rec.DurationHours,
		Timestamp:     time.Now().UTC(),
	})
}

// Client — одно websocket-подключение панели.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{Conn: conn, Send: make(chan []byte, 16)}
}

// ReadPump держит соединение и снимает клиента при обрыве.
func (h *Hub) ReadPump(client *Client) {
	defer func() {
		h.Unregister(client)
		client.Conn.Close()
	}()
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

// WritePump пишет события и пингует клиента.
func (h *Hub) WritePump(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-client.Send:
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			client.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			client.Conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}
