package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLedgerMetricsCountOutcomes(t *testing.T) {
	m := Ledger()
	require.Same(t, m, Ledger())

	before := testutil.ToFloat64(m.operations.WithLabelValues("test_insert", OutcomeError))
	m.ObserveOperation("test_insert", errors.New("boom"), time.Millisecond)
	m.ObserveOperation("test_insert", nil, time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(m.operations.WithLabelValues("test_insert", OutcomeError)))

	m.SetPending("DepositOnExchange", 1500)
	require.Equal(t, 1500.0, testutil.ToFloat64(m.pending.WithLabelValues("DepositOnExchange")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var l *LedgerMetrics
	var q *QuoteMetrics
	var h *HTTPMetrics
	require.NotPanics(t, func() {
		l.ObserveOperation("insert", nil, 0)
		l.SetPending("x", 1)
		q.ObserveQuote("buy", "immediate", nil)
		h.ObserveRequest("GET", "/", 200, 0)
	})
}

func TestQuoteMetricsDefaultSettlement(t *testing.T) {
	m := Quotes()
	before := testutil.ToFloat64(m.quotes.WithLabelValues("sell", "unknown", OutcomeError))
	m.ObserveQuote("sell", "", errors.New("bad"))
	require.Equal(t, before+1, testutil.ToFloat64(m.quotes.WithLabelValues("sell", "unknown", OutcomeError)))
}

func TestHandlerExposesCollectors(t *testing.T) {
	HTTP().ObserveRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "dealer_http_requests_total")
}
