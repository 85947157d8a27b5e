package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/time/rate"
)

// Client is one connected socket. Its state machine is implicit in two
// fields: a zero roomID means Connected, a set roomID means InRoom. The
// session fields are written by the gateway's read loop only; the mutex
// covers readers on other goroutines (fan-out, cleanup).
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	mu     sync.Mutex
	roomID string
	userID string

	closed int32
}

func NewClient(conn *websocket.Conn, rps int) *Client {
	if rps <= 0 {
		rps = 20
	}
	return &Client{
		conn:    conn,
		send:    make(chan []byte, 256),
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) setSession(roomID, userID string) {
	c.mu.Lock()
	c.roomID = roomID
	c.userID = userID
	c.mu.Unlock()
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.roomID = ""
	c.mu.Unlock()
}

func (c *Client) session() (roomID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID, c.userID
}

// enqueue hands a payload to the writer goroutine. A full buffer means the
// consumer stopped reading; the payload is dropped and the caller decides
// whether to evict the client.
func (c *Client) enqueue(payload []byte) bool {
	if atomic.LoadInt32(&c.closed) == 1 {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// writePump drains the send buffer onto the socket and keeps the connection
// alive with pings. Runs as the connection's single writer goroutine.
func (c *Client) writePump(pingInterval, writeDeadline time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close is idempotent; the CAS keeps a racing disconnect and eviction from
// double-closing the channel.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}
