package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "watchx"

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	registry *prometheus.Registry

	// Poller
	PollCycles    *prometheus.CounterVec
	PollDuration  prometheus.Histogram
	HandlerErrors *prometheus.CounterVec

	// Tracker
	TokensFetched    prometheus.Counter
	TokensAdmitted   prometheus.Counter
	TrackerSeen      prometheus.Gauge
	TrackerWatermark prometheus.Gauge

	// Feed and stream
	FeedSize      prometheus.Gauge
	StreamClients prometheus.Gauge
	StreamDropped prometheus.Counter

	// Writer
	WriterRows *prometheus.CounterVec

	// HTTP side caches and relays
	ImageProxyRequests *prometheus.CounterVec
	SolPriceLookups    *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,

		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "cycles_total",
			Help:      "Total poll cycles by outcome",
		}, []string{"status"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "cycle_duration_seconds",
			Help:      "Poll cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		HandlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "handler_errors_total",
			Help:      "Total token handler errors by handler",
		}, []string{"handler"}),

		TokensFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "tokens_fetched_total",
			Help:      "Total tokens received from upstream",
		}),
		TokensAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "tokens_admitted_total",
			Help:      "Total tokens admitted as new",
		}),
		TrackerSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "seen_mints",
			Help:      "Mints currently remembered by the tracker",
		}),
		TrackerWatermark: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "watermark_ms",
			Help:      "Newest admitted creation time (ms since epoch)",
		}),

		FeedSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "tokens",
			Help:      "Tokens held by the live feed",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Connected WebSocket clients",
		}),
		StreamDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "dropped_clients_total",
			Help:      "Clients dropped for falling behind",
		}),

		WriterRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "writer",
			Name:      "rows_total",
			Help:      "Token rows by write outcome",
		}, []string{"outcome"}),

		ImageProxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image_proxy",
			Name:      "requests_total",
			Help:      "Image relay requests by HTTP status",
		}, []string{"code"}),
		SolPriceLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sol_price",
			Name:      "lookups_total",
			Help:      "SOL price lookups by result (hit, miss, stale, error)",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.PollCycles,
		m.PollDuration,
		m.HandlerErrors,
		m.TokensFetched,
		m.TokensAdmitted,
		m.TrackerSeen,
		m.TrackerWatermark,
		m.FeedSize,
		m.StreamClients,
		m.StreamDropped,
		m.WriterRows,
		m.ImageProxyRequests,
		m.SolPriceLookups,
	)

	return m
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
