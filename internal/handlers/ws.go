// internal/handlers/ws.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dishflow/shiftbot/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ShiftEventsHandler — живая лента событий смен для панели владельца.
func ShiftEventsHandler(hub *events.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Ошибка websocket upgrade: %v", err)
			return
		}
		client := events.NewClient(conn)
		hub.Register(client)
		go hub.WritePump(client)
		go hub.ReadPump(client)
	}
}
