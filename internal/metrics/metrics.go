package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeWarning = "warning"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics holds the collectors of one server instance on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg      *prometheus.Registry
	loads    *prometheus.CounterVec
	charts   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the csvscope collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csvscope_loads_total",
			Help: "Dataset load attempts by source (upload, url) and outcome.",
		}, []string{"source", "outcome"}),
		charts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csvscope_charts_total",
			Help: "Chart renders by kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "csvscope_request_duration_seconds",
			Help:    "HTTP request latency by path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}
	m.reg.MustRegister(
		m.loads, m.charts, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Load counts one dataset load.
func (m *Metrics) Load(source, outcome string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(source, outcome).Inc()
}

// Chart counts one chart render.
func (m *Metrics) Chart(kind, outcome string) {
	if m == nil {
		return
	}
	m.charts.WithLabelValues(kind, outcome).Inc()
}

// Observe records a request duration.
func (m *Metrics) Observe(path string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(path).Observe(d.Seconds())
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
