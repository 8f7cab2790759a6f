package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/models"
)

const (
	sendBuffer      = 16
	broadcastBuffer = 64
	writeWait       = 10 * time.Second
	maxMessageSize  = 4096
)

// Message is what subscribers receive for every delivered notification
type Message struct {
	Type   string              `json:"type"`
	Events []string            `json:"events,omitempty"`
	Relay  *models.RelayResult `json:"relay,omitempty"`
}

type subscribeMessage struct {
	Type   string   `json:"type"`
	Events []string `json:"events"`
}

type broadcastMessage struct {
	event string
	data  []byte
}

type subscription struct {
	client *client
	events []string
}

// Hub fans delivered notifications out to WebSocket subscribers
type Hub struct {
	clients    map[*client]bool
	broadcast  chan broadcastMessage
	register   chan *client
	unregister chan *client
	subscribe  chan subscription
	done       chan struct{}
	count      atomic.Int64

	upgrader websocket.Upgrader
	logger   interfaces.Logger
	metrics  interfaces.MetricsCollector
}

// NewHub creates a hub; call Run before serving clients
func NewHub(logger interfaces.Logger, metrics interfaces.MetricsCollector) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan broadcastMessage, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		subscribe:  make(chan subscription),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger.With("component", "feed"),
		metrics: metrics,
	}
}

// Run owns the client set until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.updateCount()
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
			}
		case sub := <-h.subscribe:
			if !h.clients[sub.client] {
				continue
			}
			sub.client.setEvents(sub.events)
			ack, _ := json.Marshal(Message{Type: "subscribed", Events: sub.events})
			h.deliver(sub.client, ack)
		case msg := <-h.broadcast:
			for c := range h.clients {
				if c.subscribedTo(msg.event) {
					h.deliver(c, msg.data)
				}
			}
		}
	}
}

// Publish queues a delivered notification for broadcast without blocking
func (h *Hub) Publish(result *models.RelayResult) {
	data, err := json.Marshal(Message{Type: "notification", Relay: result})
	if err != nil {
		h.logger.Error("Failed to encode feed message", err)
		return
	}

	select {
	case h.broadcast <- broadcastMessage{event: result.EventType, data: data}:
	default:
		h.logger.Warn("Feed broadcast dropped",
			"event", result.EventType,
			"delivery_id", result.DeliveryID,
		)
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// ServeHTTP upgrades the request and serves the connection until it closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Feed upgrade failed", "error", err.Error(), "remote_addr", r.RemoteAddr)
		return
	}
	h.logger.Info("Feed client connected", "remote_addr", r.RemoteAddr)

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	c.readPump()

	h.logger.Info("Feed client disconnected", "remote_addr", r.RemoteAddr)
}

// deliver never blocks the hub; a full buffer drops the client
func (h *Hub) deliver(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("Dropping slow feed client", "remote_addr", c.conn.RemoteAddr().String())
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	h.metrics.SetGauge("feed_clients", float64(len(h.clients)), nil)
}

type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	events   []string
	eventsMu sync.RWMutex
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg subscribeMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "subscribe" {
			continue
		}
		select {
		case c.hub.subscribe <- subscription{client: c, events: msg.Events}:
		case <-c.hub.done:
			return
		}
	}
}

func (c *client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *client) setEvents(events []string) {
	c.eventsMu.Lock()
	defer c.eventsMu.Unlock()
	if len(events) == 0 {
		c.events = nil
		return
	}
	c.events = append([]string(nil), events...)
}

// subscribedTo treats an empty subscription as all events
func (c *client) subscribedTo(event string) bool {
	c.eventsMu.RLock()
	defer c.eventsMu.RUnlock()
	if len(c.events) == 0 {
		return true
	}
	for _, candidate := range c.events {
		if candidate == event {
			return true
		}
	}
	return false
}
