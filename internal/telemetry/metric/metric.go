package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the tachikv metric instruments, registered on a
// private registry so independent instances (and tests) never collide.
type Metrics struct {
	ConnectionsActive  prometheus.Gauge
	ConnectionsTotal   prometheus.Counter
	CommandsTotal      *prometheus.CounterVec
	ProtocolErrors     prometheus.Counter
	ArenaUsedBytes     prometheus.Gauge
	ArenaCapacityBytes prometheus.Gauge
	BytesReadTotal     prometheus.Counter
	BytesWrittenTotal  prometheus.Counter

	registry *prometheus.Registry
}

// New creates a registry with all tachikv instruments registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tachikv_connections_active",
			Help: "Connections currently registered with the event loop.",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tachikv_connections_total",
			Help: "Connections accepted since startup.",
		}),
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tachikv_commands_total",
			Help: "Commands dispatched, by verb.",
		}, []string{"verb"}),
		ProtocolErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "tachikv_protocol_errors_total",
			Help: "Connections torn down for protocol violations.",
		}),
		ArenaUsedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tachikv_arena_used_bytes",
			Help: "Bytes allocated from the value arena.",
		}),
		ArenaCapacityBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tachikv_arena_capacity_bytes",
			Help: "Total capacity of the value arena.",
		}),
		BytesReadTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tachikv_bytes_read_total",
			Help: "Bytes read from client connections.",
		}),
		BytesWrittenTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tachikv_bytes_written_total",
			Help: "Bytes written to client connections.",
		}),

		registry: reg,
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
