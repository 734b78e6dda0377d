package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linesmerrill/justice-case-api/lifecycle"
	"github.com/linesmerrill/justice-case-api/models"
)

const namespace = "justice"

// Metrics holds the prometheus collectors of the service. Each instance owns
// its registry so several apps can live in one process.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	decisions   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	expiring    *prometheus.GaugeVec
}

// NewMetrics registers all collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permission_decisions_total",
			Help:      "Permission engine decisions by module, action and result.",
		}, []string{"module", "action", "result"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "case_transitions_total",
			Help:      "Committed case changes by action and resulting status.",
		}, []string{"case_type", "action", "status"}),
		expiring: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cases_expiry",
			Help:      "Cases whose limitation has expired or expires soon, as of the last scan.",
		}, []string{"state"}),
	}
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDecision counts a permission decision. Its signature matches the
// permission engine's decision hook.
func (m *Metrics) ObserveDecision(module, action string, allowed bool) {
	result := "deny"
	if allowed {
		result = "allow"
	}
	m.decisions.WithLabelValues(module, action, result).Inc()
}

// Notify counts a committed lifecycle event
func (m *Metrics) Notify(e lifecycle.Event) {
	m.transitions.WithLabelValues(string(e.CaseType), e.Action, string(e.To)).Inc()
}

// SetExpiring records the outcome of an expiry scan
func (m *Metrics) SetExpiring(cases []models.CaseView) {
	var expired, soon int
	for _, c := range cases {
		if c.Expiry == nil {
			continue
		}
		switch c.Expiry.State {
		case models.ExpiryExpired:
			expired++
		case models.ExpiryExpiringSoon:
			soon++
		}
	}
	m.expiring.WithLabelValues(string(models.ExpiryExpired)).Set(float64(expired))
	m.expiring.WithLabelValues(string(models.ExpiryExpiringSoon)).Set(float64(soon))
}

func (m *Metrics) observeRequest(route, method string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
