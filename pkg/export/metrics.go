package export

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
)

// Metrics is the preview server's prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	People          prometheus.Gauge
	Diagnostics     *prometheus.GaugeVec
	Sessions        prometheus.Gauge
	TogglesTotal    *prometheus.CounterVec
	ReloadsTotal    *prometheus.CounterVec
	PatchSize       prometheus.Histogram
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a registry with every metric initialised.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.People = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "orgchart_people",
			Help: "Number of people in the charted tree",
		},
	)
	m.Diagnostics = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orgchart_diagnostics",
			Help: "Records left out of the tree or overridden, by kind",
		},
		[]string{"kind"},
	)
	m.Sessions = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "orgchart_sessions",
			Help: "Number of live preview sessions",
		},
	)
	m.TogglesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_toggles_total",
			Help: "Toggle requests by result",
		},
		[]string{"result"},
	)
	m.ReloadsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_reloads_total",
			Help: "Data reloads by result",
		},
		[]string{"result"},
	)
	m.PatchSize = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orgchart_patch_nodes",
			Help:    "Nodes entering, moving or leaving per patch",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		},
	)
	m.RequestDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgchart_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	return m
}

// Registry returns the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetDataset publishes the size and diagnostics of a freshly loaded tree.
func (m *Metrics) SetDataset(tree *hierarchy.Tree, diag hierarchy.Diagnostics) {
	m.People.Set(float64(tree.Len()))
	m.Diagnostics.WithLabelValues("orphans").Set(float64(len(diag.Orphans)))
	m.Diagnostics.WithLabelValues("duplicates").Set(float64(len(diag.Duplicates)))
	m.Diagnostics.WithLabelValues("extra_roots").Set(float64(len(diag.ExtraRoots)))
	m.Diagnostics.WithLabelValues("unreachable").Set(float64(len(diag.Unreachable)))
	m.Diagnostics.WithLabelValues("invalid").Set(float64(len(diag.Invalid)))
}

// instrument records the latency of h under route.
func (m *Metrics) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
