package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Ticks         prometheus.Counter
	TickLatency   prometheus.Histogram
	Nodes         prometheus.Gauge
	Edges         prometheus.Gauge
	StreamClients prometheus.Gauge
	DroppedFrames prometheus.Counter
	Reconfigures  prometheus.Counter
	registry      *prometheus.Registry
}

// New creates a metrics instance on its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "nodefield_ticks_total",
			Help: "Total simulation ticks",
		}),
		TickLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nodefield_tick_duration_seconds",
			Help:    "Time spent advancing one frame",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		Nodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nodefield_nodes",
			Help: "Nodes in the current simulation",
		}),
		Edges: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nodefield_edges",
			Help: "Edges in the current simulation",
		}),
		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nodefield_stream_clients",
			Help: "Connected frame stream clients",
		}),
		DroppedFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "nodefield_stream_dropped_frames_total",
			Help: "Frames not delivered to slow stream clients",
		}),
		Reconfigures: factory.NewCounter(prometheus.CounterOpts{
			Name: "nodefield_reconfigures_total",
			Help: "Simulations replaced at runtime",
		}),
		registry: registry,
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTick records one completed frame
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.TickLatency.Observe(d.Seconds())
}

// SetTopology records the size of the current simulation
func (m *Metrics) SetTopology(nodes, edges int) {
	if m == nil {
		return
	}
	m.Nodes.Set(float64(nodes))
	m.Edges.Set(float64(edges))
}

// Reconfigured counts a runtime simulation swap
func (m *Metrics) Reconfigured() {
	if m == nil {
		return
	}
	m.Reconfigures.Inc()
}

// SetStreamClients records the number of stream subscribers
func (m *Metrics) SetStreamClients(n int) {
	if m == nil {
		return
	}
	m.StreamClients.Set(float64(n))
}

// FrameDropped counts a frame skipped for a slow client
func (m *Metrics) FrameDropped() {
	if m == nil {
		return
	}
	m.DroppedFrames.Inc()
}
