// Package relay wires the registries, router, and broadcaster into one
// Relay and owns the connection lifecycle from upgrade to cleanup.
package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// Relay is the composition root of the event relay. One instance owns all
// shared state; nothing in this package is an ambient global.
type Relay struct {
	cfg     Config
	log     *slog.Logger
	conns   *ConnRegistry
	rooms   *RoomRegistry
	router  *Router
	caster  *Broadcaster
	origins *OriginPolicy
	metrics *Metrics
	promReg *prometheus.Registry

	upgrader websocket.Upgrader

	// wg tracks the pump goroutines of every live connection so shutdown
	// can wait for them to drain.
	wg sync.WaitGroup
}

// New builds a Relay from configuration. The returned relay is ready to
// accept connections; it has no background loop of its own.
func New(cfg Config, log *slog.Logger) *Relay {
	cfg.sanitize()

	promReg := prometheus.NewRegistry()
	metrics := NewMetrics(promReg)

	r := &Relay{
		cfg:     cfg,
		log:     log,
		conns:   NewConnRegistry(),
		rooms:   NewRoomRegistry(),
		router:  newRouter(log, metrics),
		origins: NewOriginPolicy(cfg.AllowedOrigins, log),
		metrics: metrics,
		promReg: promReg,
	}
	r.caster = newBroadcaster(r.rooms, r.conns, log, metrics)
	r.caster.onFailure = r.disconnect
	r.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     r.origins.Check,
	}
	r.registerEvents()
	return r
}

// Connect registers a freshly upgraded socket and starts its pumps. This is
// the Connecting -> Open transition; from here on the connection receives
// broadcasts for every room it joins.
func (r *Relay) Connect(sock *websocket.Conn, addr string) *Conn {
	c := newConn(sock, addr, r.cfg)
	r.conns.Register(c)

	r.metrics.ConnectionsActive.Inc()
	r.log.Info("client connected", "conn", c.id, "addr", addr, "clients", r.conns.Len())

	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		c.writePump(r.log)
	}()
	go func() {
		defer r.wg.Done()
		c.readPump(r)
	}()

	return c
}

// disconnect is the Open -> Closed transition. Cleanup order matters: leave
// every room first (empty rooms are garbage-collected as a side effect),
// then unregister, so no room ever lists a destroyed connection. All paths
// that detect a dead connection converge here, and only the first wins.
func (r *Relay) disconnect(c *Conn) {
	if !c.markClosed() {
		return
	}

	left := r.rooms.LeaveAll(c.id)
	r.conns.Unregister(c.id)

	// The write pump owns the transport teardown: on quit it sends the
	// close frame, then its deferred Close tears the socket down, which
	// also unblocks the read pump. Write deadlines bound how long a
	// wedged writer can hold the socket open.

	r.metrics.ConnectionsActive.Dec()
	r.metrics.RoomsActive.Set(float64(r.rooms.Len()))
	r.log.Info("client disconnected", "conn", c.id, "addr", c.addr,
		"rooms_left", len(left), "clients", r.conns.Len())
}

func (r *Relay) join(c *Conn, room RoomID) {
	r.rooms.Join(room, c.id)
	r.metrics.RoomsActive.Set(float64(r.rooms.Len()))
	r.log.Debug("joined room", "conn", c.id, "room", room.String())
}

func (r *Relay) leave(c *Conn, room RoomID) {
	r.rooms.Leave(room, c.id)
	r.metrics.RoomsActive.Set(float64(r.rooms.Len()))
	r.log.Debug("left room", "conn", c.id, "room", room.String())
}

// Stats is a point-in-time snapshot of the relay's live state.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

// Snapshot reports current connection and room counts.
func (r *Relay) Snapshot() Stats {
	return Stats{
		Connections: r.conns.Len(),
		Rooms:       r.rooms.Len(),
	}
}

// Shutdown closes every live connection and waits for their pumps to finish
// or the context to expire. Safe to call once the HTTP listener has stopped
// accepting upgrades.
func (r *Relay) Shutdown(ctx context.Context) error {
	conns := r.conns.Snapshot()
	r.log.Info("shutting down relay", "clients", len(conns))

	for _, c := range conns {
		r.disconnect(c)
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("relay shutdown completed")
		return nil
	case <-ctx.Done():
		r.log.Warn("relay shutdown timeout reached, some goroutines may still be running")
		return ctx.Err()
	}
}

// ShutdownTimeout exposes the configured drain budget for callers wiring
// signal handling.
func (r *Relay) ShutdownTimeout() time.Duration {
	return r.cfg.ShutdownTimeout
}
