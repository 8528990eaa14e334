package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ledger outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// NewRegistry returns the registry for service metrics.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler exposes the registry in the text exposition format, merged with the
// default registry where the runtime collectors and the gorm pool stats live.
func Handler(registry *prometheus.Registry) http.Handler {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, registry}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{Registry: registry})
}

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(registry *prometheus.Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicedesk_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "invoicedesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method"}),
	}
	registry.MustRegister(m.requests, m.duration)
	return m
}

// GinMiddleware observes every request once it completes.
func (m *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := strings.ToUpper(c.Request.Method)
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// LedgerMetrics counts ledger operations by the backend that answered them.
type LedgerMetrics struct {
	operations *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
}

func NewLedgerMetrics(registry *prometheus.Registry) *LedgerMetrics {
	m := &LedgerMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicedesk_ledger_operations_total",
			Help: "Ledger operations by operation, answering source and outcome.",
		}, []string{"operation", "source", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicedesk_ledger_fallbacks_total",
			Help: "Ledger operations rerouted to the fallback store, by reason.",
		}, []string{"operation", "reason"}),
	}
	registry.MustRegister(m.operations, m.fallbacks)
	return m
}

func (m *LedgerMetrics) RecordOperation(operation, source, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, source, outcome).Inc()
}

func (m *LedgerMetrics) RecordFallback(operation, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(operation, reason).Inc()
}
