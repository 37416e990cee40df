package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "relay"

// Metrics holds the Prometheus instruments for the relay core.
type Metrics struct {
	ConnectionsActive prometheus.Gauge
	RoomsActive       prometheus.Gauge

	EventsReceived *prometheus.CounterVec
	ProtocolErrors prometheus.Counter

	Broadcasts      prometheus.Counter
	FramesDelivered prometheus.Counter
	FramesDropped   prometheus.Counter
}

// NewMetrics registers the relay instruments with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "connections_active",
			Help:      "Currently open WebSocket connections.",
		}),
		RoomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rooms_active",
			Help:      "Rooms with at least one member.",
		}),
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_received_total",
			Help:      "Inbound events dispatched, by event name.",
		}, []string{"event"}),
		ProtocolErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "protocol_errors_total",
			Help:      "Frames dropped for unknown names, bad arity, or bad types.",
		}),
		Broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "broadcasts_total",
			Help:      "Broadcast invocations, one per target room.",
		}),
		FramesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_delivered_total",
			Help:      "Frames queued to member connections.",
		}),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_dropped_total",
			Help:      "Frames dropped because a member was closed or its queue full.",
		}),
	}
}
