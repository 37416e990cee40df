// Package relay exposes the HTTP handlers: the WebSocket upgrade, a health
// check, and a live stats snapshot.
package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WebSocketHandler upgrades the request and hands the socket to the relay.
// The router only dispatches GET here; the upgrader enforces the origin
// policy, and everything after the upgrade is driven by the connection's
// own pumps.
func (r *Relay) WebSocketHandler(w http.ResponseWriter, req *http.Request) {
	sock, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warn("websocket upgrade failed", "addr", req.RemoteAddr, "error", err)
		return
	}

	r.Connect(sock, req.RemoteAddr)
}

// HealthHandler is a plain-text liveness probe.
func (r *Relay) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "Nexus relay is running!")
}

// StatsHandler returns current connection and room counts as JSON.
func (r *Relay) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(r.Snapshot()); err != nil {
		r.log.Warn("writing stats response", "error", err)
	}
}
