/*
Package api
File: hub.go
Description:
    The WebSocket Hub fans out server announcements to every connected
    browser: finished games and newly unlocked badges.

    Architecture:
    - Hub: owns the client registry; only its Run loop touches it.
    - Client: one browser connection with a buffered send queue.
    - ServeWs: upgrades GET /ws and attaches the connection to the Hub.
*/

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Announcement types sent over the socket.
const (
	MsgGameWon      = "game_won"
	MsgGameLost     = "game_lost"
	MsgBadgeAwarded = "badge_awarded"
	MsgSystem       = "system"
)

// Message is the JSON envelope for all real-time traffic.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	Sender  string `json:"sender"`
}

// Client is a single connected browser tab.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	welcome []byte
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub() *Hub {
	welcome, _ := json.Marshal(Message{Type: MsgSystem, Payload: "connected"})
	return &Hub{
		welcome:    welcome,
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run is the Hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			// Fresh queue, so this never blocks. Anything announced after
			// the client reads it will reach the client.
			client.send <- h.welcome
			slog.Debug("ws client registered", "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow reader; drop it rather than stall everyone.
					close(client.send)
					delete(h.clients, client)
				}
			}

		case <-h.done:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

// Stop ends the Run loop and disconnects every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Announce queues msg for every connected client. It never blocks the caller:
// when the queue is full the message is dropped.
func (h *Hub) Announce(msgType string, payload any, sender string) {
	if h == nil {
		return
	}
	b, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: sender})
	if err != nil {
		slog.Error("marshal announcement", "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
		slog.Warn("announcement dropped", "type", msgType)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request and attaches the connection to hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// readPump discards inbound frames; it only exists to notice the close and
// keep the pong deadline moving.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("ws read error", "error", err)
			}
			return
		}
	}
}

// writePump drains the send queue and pings the peer. It exits when send is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
