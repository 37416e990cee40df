// Package relay manages individual WebSocket connections, handling read and
// write pumps, rate limiting, and per-connection lifecycle state.
package relay

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// pongWait is how long a connection may stay silent before the read
	// deadline trips; the client answers server pings well inside it.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = 54 * time.Second

	// writeWait bounds a single outbound write.
	writeWait = 10 * time.Second
)

// Conn is one live transport session. It carries the socket, the buffered
// outbound queue the broadcaster feeds, and the closed flag the lifecycle
// supervisor flips exactly once.
type Conn struct {
	id      ConnID
	sock    *websocket.Conn
	send    chan []byte
	quit    chan struct{}
	addr    string
	limiter *rateLimiter

	maxMessageSize int64
	rateLimit      int
	rateInterval   time.Duration

	mu     sync.Mutex
	closed bool
}

func newConn(sock *websocket.Conn, addr string, cfg Config) *Conn {
	if sock != nil {
		sock.SetReadLimit(cfg.MaxMessageSize)
	}

	return &Conn{
		sock:           sock,
		send:           make(chan []byte, cfg.SendBufferSize),
		quit:           make(chan struct{}),
		addr:           addr,
		limiter:        newRateLimiter(cfg.RateLimitBurst, cfg.RateLimitRefill),
		maxMessageSize: cfg.MaxMessageSize,
		rateLimit:      cfg.RateLimitBurst,
		rateInterval:   cfg.RateLimitRefill,
	}
}

// ID returns the identity the connection registry assigned.
func (c *Conn) ID() ConnID {
	return c.id
}

// enqueue hands a frame to the write pump without blocking. It reports false
// when the connection is closed or its queue is full; the broadcaster treats
// either as an implicit disconnect.
func (c *Conn) enqueue(payload []byte) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// markClosed transitions the connection to its terminal state. Only the
// first caller wins; racing cleanups (read error vs failed send vs shutdown)
// all funnel through here.
func (c *Conn) markClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	close(c.quit)
	return true
}

func (c *Conn) setupRead(log *slog.Logger) {
	if err := c.sock.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Warn("setting initial read deadline", "addr", c.addr, "error", err)
	}
	c.sock.SetPongHandler(func(string) error {
		if err := c.sock.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Warn("setting read deadline in pong handler", "addr", c.addr, "error", err)
		}
		return nil
	})
}

// readPump reads frames off the socket and hands them to the router until
// the transport reports a close. The deferred disconnect runs the supervisor
// cleanup: leave every room, then unregister.
func (c *Conn) readPump(r *Relay) {
	defer r.disconnect(c)

	c.setupRead(r.log)

	for {
		_, raw, err := c.sock.ReadMessage()
		if err != nil {
			c.logReadEnd(r.log, err)
			return
		}

		if !c.limiter.allow() {
			r.log.Warn("rate limit exceeded, discarding frame",
				"conn", c.id, "addr", c.addr,
				"burst", c.rateLimit, "interval", c.rateInterval)
			continue
		}

		r.router.Dispatch(c, raw)
	}
}

func (c *Conn) logReadEnd(log *slog.Logger, err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Warn("frame exceeded maximum size", "conn", c.id, "addr", c.addr, "limit", c.maxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		log.Info("client disconnected", "conn", c.id, "addr", c.addr)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		log.Info("connection closed", "conn", c.id, "addr", c.addr)
	default:
		log.Warn("websocket read error", "conn", c.id, "addr", c.addr, "error", err)
	}
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings. It exits when the supervisor closes the connection or a
// write fails; a failed write surfaces as a read error on the peer's side
// and the normal disconnect path takes over.
func (c *Conn) writePump(log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.sock.Close(); err != nil && !isExpectedCloseError(err) {
			log.Warn("closing socket in write pump", "conn", c.id, "error", err)
		}
	}()

	for {
		select {
		case payload := <-c.send:
			if !c.writeFrame(log, payload) {
				return
			}
		case <-ticker.C:
			if !c.writePing(log) {
				return
			}
		case <-c.quit:
			c.writeClose(log)
			return
		}
	}
}

func (c *Conn) writeFrame(log *slog.Logger, payload []byte) bool {
	if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Warn("setting write deadline", "conn", c.id, "error", err)
		return false
	}
	if err := c.sock.WriteMessage(websocket.TextMessage, payload); err != nil {
		if !isExpectedCloseError(err) {
			log.Warn("writing frame", "conn", c.id, "error", err)
		}
		return false
	}
	return true
}

func (c *Conn) writePing(log *slog.Logger) bool {
	if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Warn("setting write deadline for ping", "conn", c.id, "error", err)
		return false
	}
	if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
		if !isExpectedCloseError(err) {
			log.Warn("writing ping", "conn", c.id, "error", err)
		}
		return false
	}
	return true
}

func (c *Conn) writeClose(log *slog.Logger) {
	if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	if err := c.sock.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
		if !isExpectedCloseError(err) {
			log.Warn("writing close frame", "conn", c.id, "error", err)
		}
	}
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
