package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters on a private registry so that several
// servers (and tests) never collide on registration.
type Metrics struct {
	reg *prometheus.Registry

	committed   *prometheus.CounterVec
	planImports *prometheus.CounterVec
	exports     *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// NewMetrics registers the counters on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		committed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metre",
			Name:      "work_items_committed_total",
			Help:      "Work items committed to the takeoff, by source (calibration, tool, manual).",
		}, []string{"source"}),
		planImports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metre",
			Name:      "plan_imports_total",
			Help:      "Plan files imported, by format and result.",
		}, []string{"format", "result"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metre",
			Name:      "exports_total",
			Help:      "Takeoff exports served, by format.",
		}, []string{"format"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metre",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
}

// WorkItemsCommitted implements workspace.Observer.
func (m *Metrics) WorkItemsCommitted(source string, n int) {
	if n > 0 {
		m.committed.WithLabelValues(source).Add(float64(n))
	}
}

func (m *Metrics) recordImport(format string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.planImports.WithLabelValues(format, result).Inc()
}

func (m *Metrics) recordExport(format string) {
	m.exports.WithLabelValues(format).Inc()
}

func (m *Metrics) recordRequest(method, route string, status int) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }
