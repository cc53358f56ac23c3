// Package ws pushes newly created messages to connected browsers. Delivery
// is best effort: no subscribers, a full buffer, or a dead connection never
// surfaces as an error to the HTTP caller.
package ws

import "log"

// Hub tracks connected clients and fans broadcast payloads out to them.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister/broadcast events. Call it in its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case msg := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow consumer: drop it rather than block the hub.
					log.Println("Dropping slow websocket client")
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}
