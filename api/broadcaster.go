package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/FlapTrack/flaptrack-go/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventClient represents a single connected live-feed client.
type EventClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// EventBroadcaster fans freshly ingested events out to connected clients.
type EventBroadcaster struct {
	clients    map[*EventClient]bool
	register   chan *EventClient
	unregister chan *EventClient
	events     chan models.PresenceEvent
	mu         sync.RWMutex
}

// NewEventBroadcaster creates a broadcaster instance.
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients:    make(map[*EventClient]bool),
		register:   make(chan *EventClient),
		unregister: make(chan *EventClient),
		events:     make(chan models.PresenceEvent, 16),
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *EventBroadcaster) Run() {
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			log.Printf("Live-feed client registered (%d connected)", b.clientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			log.Printf("Live-feed client unregistered (%d connected)", b.clientCount())

		case ev := <-b.events:
			b.broadcast(ev)
		}
	}
}

func (b *EventBroadcaster) clientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// NotifyEvent queues an event for broadcast. Safe to call from any goroutine;
// drops the event if the queue is full rather than blocking ingestion.
func (b *EventBroadcaster) NotifyEvent(ev models.PresenceEvent) {
	select {
	case b.events <- ev:
	default:
		log.Printf("Live-feed queue full, dropping event %s", ev.ID)
	}
}

func (b *EventBroadcaster) broadcast(ev models.PresenceEvent) {
	message, err := json.Marshal(gin.H{"type": "event", "event": ev})
	if err != nil {
		log.Printf("Error marshaling event %s: %v", ev.ID, err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
			// Slow consumer; drop the message rather than stall the loop
		}
	}
}

// WebSocketHandler upgrades the connection and attaches it to the broadcaster.
func (s *Server) WebSocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &EventClient{Conn: conn, Send: make(chan []byte, 16)}
	s.Broadcaster.register <- client

	go s.writePump(client)
	go s.readPump(client)
}

// writePump forwards queued messages to the socket until the client goes away.
func (s *Server) writePump(client *EventClient) {
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
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and unregisters on close.
func (s *Server) readPump(client *EventClient) {
	defer func() {
		s.Broadcaster.unregister <- client
		client.Conn.Close()
	}()
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
