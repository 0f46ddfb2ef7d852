// Package metrics exposes the Prometheus collectors of the dealer service.
// Collectors are registered lazily on first use against the default registry.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type LedgerMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	pending    *prometheus.GaugeVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the ledger collectors
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "dealer_ledger_operations_total",
				Help: "Count of transfer ledger operations by operation and outcome.",
			}, []string{"op", "outcome"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "dealer_ledger_operation_duration_seconds",
				Help:    "Latency of transfer ledger operations including persistence.",
				Buckets: prometheus.DefBuckets,
			}, []string{"op"}),
			pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "dealer_ledger_pending_sats",
				Help: "Satoshis in pending transfers by direction as of the last ledger write.",
			}, []string{"direction"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.operations,
			ledgerRegistry.duration,
			ledgerRegistry.pending,
		)
	})
	return ledgerRegistry
}

// ObserveOperation records one ledger operation
func (m *LedgerMetrics) ObserveOperation(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetPending records the pending satoshis for a direction
func (m *LedgerMetrics) SetPending(direction string, sats int64) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(direction).Set(float64(sats))
}

type QuoteMetrics struct {
	quotes *prometheus.CounterVec
}

var (
	quoteOnce     sync.Once
	quoteRegistry *QuoteMetrics
)

// Quotes returns the quote collectors
func Quotes() *QuoteMetrics {
	quoteOnce.Do(func() {
		quoteRegistry = &QuoteMetrics{
			quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "dealer_quotes_total",
				Help: "Count of quote requests by side, settlement and outcome.",
			}, []string{"side", "settlement", "outcome"}),
		}
		prometheus.MustRegister(quoteRegistry.quotes)
	})
	return quoteRegistry
}

// ObserveQuote records a served or rejected quote
func (m *QuoteMetrics) ObserveQuote(side, settlement string, err error) {
	if m == nil {
		return
	}
	if settlement == "" {
		settlement = "unknown"
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.quotes.WithLabelValues(side, settlement, outcome).Inc()
}

type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	httpOnce     sync.Once
	httpRegistry *HTTPMetrics
)

// HTTP returns the HTTP server collectors
func HTTP() *HTTPMetrics {
	httpOnce.Do(func() {
		httpRegistry = &HTTPMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "dealer_http_requests_total",
				Help: "Count of HTTP requests by method, route and status code.",
			}, []string{"method", "route", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "dealer_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			}, []string{"route"}),
		}
		prometheus.MustRegister(httpRegistry.requests, httpRegistry.latency)
	})
	return httpRegistry
}

// ObserveRequest records one served request
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
