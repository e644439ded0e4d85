package marketdata

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS layer in front
		return true
	},
}

// Hub maintains the set of live websocket clients and fans market
// data out to them. Clients subscribe per symbol; a client with no
// subscriptions receives everything.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan broadcastMsg
	register   chan *client
	unregister chan *client
	done       chan struct{}
	once       sync.Once
}

type broadcastMsg struct {
	symbol  string
	payload []byte
}

// NewHub creates a hub; call Run in its own goroutine
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan broadcastMsg, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			logger.L().Infow("websocket client connected",
				"remote", c.id, "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				logger.L().Infow("websocket client disconnected",
					"remote", c.id, "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if !c.wants(msg.symbol) {
					continue
				}
				select {
				case c.send <- msg.payload:
				default:
					// slow consumer, drop the connection
					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Stop shuts the hub down and disconnects all clients
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Broadcast queues a symbol-tagged payload for all interested clients
func (h *Hub) Broadcast(symbol string, payload []byte) {
	select {
	case h.broadcast <- broadcastMsg{symbol: symbol, payload: payload}:
	case <-h.done:
	default:
		logger.L().Warnw("websocket broadcast queue full, dropping update", "symbol", symbol)
	}
}

// client is one websocket connection
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	subsMu sync.RWMutex
	subs   map[string]bool
}

// subscribeRequest is the inbound client message shape
type subscribeRequest struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

func (c *client) wants(symbol string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	if len(c.subs) == 0 {
		return true
	}
	return c.subs[symbol]
}

func (c *client) subscribe(symbols []string, on bool) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, s := range symbols {
		if on {
			c.subs[s] = true
		} else {
			delete(c.subs, s)
		}
	}
}

// readPump consumes subscription requests until the connection drops
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L().Debugw("websocket read error", "remote", c.id, "error", err)
			}
			return
		}

		var req subscribeRequest
		if err := json.Unmarshal(message, &req); err != nil {
			logger.L().Debugw("invalid websocket message", "remote", c.id, "error", err)
			continue
		}

		switch req.Op {
		case "subscribe":
			c.subscribe(req.Symbols, true)
		case "unsubscribe":
			c.subscribe(req.Symbols, false)
		default:
			logger.L().Debugw("unknown websocket op", "remote", c.id, "op", req.Op)
		}
	}
}

// writePump drains the send queue and keeps the connection alive with pings
func (c *client) writePump() {
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

// ServeWS upgrades an HTTP request to a websocket and registers the
// client with the hub
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Warnw("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		id:   conn.RemoteAddr().String(),
		subs: make(map[string]bool),
	}

	hub.register <- c

	go c.writePump()
	go c.readPump()
}
