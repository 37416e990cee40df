// Package relay wires the HTTP surface of the service onto a chi router.
package relay

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes returns the relay's HTTP handler: the WebSocket endpoint plus
// health, stats, and Prometheus metrics.
func (r *Relay) Routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", r.HealthHandler)
	mux.Get("/stats", r.StatsHandler)
	mux.Get("/ws", r.WebSocketHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(r.promReg, promhttp.HandlerOpts{}))

	return mux
}

// CreateServer creates and configures an HTTP server for the given handler.
// Timeouts apply to the plain HTTP endpoints only; upgraded WebSocket
// connections are hijacked and manage their own deadlines.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
