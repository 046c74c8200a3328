package capture

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// statusClient represents one connected status subscriber.
type statusClient struct {
	conn *websocket.Conn
	send chan []byte
}

// StatusHub pushes recorder state transitions to connected clients so
// every open page can show whether the camera is rolling.
type StatusHub struct {
	clients    map[*statusClient]bool
	broadcast  chan []byte
	register   chan *statusClient
	unregister chan *statusClient
	mu         sync.RWMutex
}

func NewStatusHub() *StatusHub {
	return &StatusHub{
		clients:    make(map[*statusClient]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *statusClient),
		unregister: make(chan *statusClient),
	}
}

// Run starts the hub's message processing loop.
func (h *StatusHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("StatusHub: client registered (%d connected)", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than stall the hub.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastStatus serializes a recorder status and fans it out to every
// connected client.
func (h *StatusHub) BroadcastStatus(status Status) {
	payload, err := json.Marshal(status)
	if err != nil {
		log.Printf("StatusHub: failed to marshal status: %v", err)
		return
	}
	h.broadcast <- payload
}

// ServeWS handles one websocket connection's lifecycle.
func (h *StatusHub) ServeWS(c *websocket.Conn) {
	client := &statusClient{conn: c, send: make(chan []byte, 8)}
	h.register <- client

	go func() {
		for message := range client.send {
			if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}()

	// Read loop only to detect disconnects; clients don't send anything.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister <- client
}
