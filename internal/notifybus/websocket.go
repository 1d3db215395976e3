package notifybus

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy belongs to the host's API layer; the bus accepts all.
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// wsMessage is the envelope written to WebSocket clients.
type wsMessage struct {
	Type string `json:"type"`
	Data Event  `json:"data"`
}

// WebSocketBroadcaster pushes every published event to all connected
// WebSocket clients. It implements both Publisher and http.Handler.
type WebSocketBroadcaster struct {
	mu      sync.RWMutex
	clients map[*wsClient]bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewWebSocketBroadcaster creates a broadcaster with no clients.
func NewWebSocketBroadcaster() *WebSocketBroadcaster {
	return &WebSocketBroadcaster{clients: make(map[*wsClient]bool)}
}

// Publish marshals the event and queues it for every connected client.
// Clients that cannot keep up are disconnected.
func (w *WebSocketBroadcaster) Publish(event Event) {
	data, err := json.Marshal(wsMessage{Type: "insights:notification", Data: event})
	if err != nil {
		log.Error().Err(err).Str("insightId", event.InsightID).Msg("Failed to marshal notification event")
		return
	}

	w.mu.RLock()
	clients := make([]*wsClient, 0, len(w.clients))
	for client := range w.clients {
		clients = append(clients, client)
	}
	w.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- data:
		default:
			w.remove(client)
		}
	}
}

// ServeHTTP upgrades the request and keeps the connection until the client
// goes away.
func (w *WebSocketBroadcaster) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, 64)}
	w.mu.Lock()
	w.clients[client] = true
	w.mu.Unlock()
	log.Debug().Str("remote", r.RemoteAddr).Msg("Notification client connected")

	go w.writeLoop(client)
	go w.readLoop(client)
}

// ClientCount returns the number of connected clients.
func (w *WebSocketBroadcaster) ClientCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

func (w *WebSocketBroadcaster) writeLoop(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			if !ok {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				w.remove(client)
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				w.remove(client)
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close messages are processed.
func (w *WebSocketBroadcaster) readLoop(client *wsClient) {
	defer w.remove(client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (w *WebSocketBroadcaster) remove(client *wsClient) {
	w.mu.Lock()
	if w.clients[client] {
		delete(w.clients, client)
		close(client.send)
	}
	w.mu.Unlock()
	client.conn.Close()
}
