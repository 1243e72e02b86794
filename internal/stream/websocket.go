package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // viewers are served from other local origins
	},
}

const (
	wsWriteTimeout = 2 * time.Second
	wsSendBuffer   = 8 // frames queued per client before new ones are dropped
)

// wsClient owns one connection. Only its writer goroutine writes to or
// closes conn; send is closed by the hub under its lock.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketHub is a Transport that broadcasts each frame to every connected
// websocket client. Serve it as an http.Handler. Each client is written by
// its own goroutine, so Send never waits on the network: a client that falls
// behind misses frames, and a client whose write fails is dropped. Frames
// sent with no clients connected are discarded.
type WebSocketHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewWebSocketHub creates an empty hub.
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{clients: make(map[*wsClient]struct{})}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects.
func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Logf("stream: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	Logf("stream: websocket client %s connected (%d total)", conn.RemoteAddr(), n)

	go h.writeLoop(c)

	// Clients never send anything useful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Logf("stream: websocket read error: %v", err)
			}
			break
		}
	}
	h.remove(c)
}

// writeLoop sends queued frames until the hub closes c.send, then says
// goodbye and closes the connection.
func (h *WebSocketHub) writeLoop(c *wsClient) {
	defer c.conn.Close()

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			Logf("stream: dropping websocket client %s: %v", c.conn.RemoteAddr(), err)
			h.remove(c)
			return
		}
	}

	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"),
		time.Now().Add(wsWriteTimeout))
}

// Clients returns the number of connected clients.
func (h *WebSocketHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Send queues the encoded frame for every client without blocking.
func (h *WebSocketHub) Send(_ context.Context, records []Record) error {
	payload, err := EncodeFrame(records)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
	return nil
}

// Close disconnects every client and refuses new ones.
func (h *WebSocketHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	return nil
}

func (h *WebSocketHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}
