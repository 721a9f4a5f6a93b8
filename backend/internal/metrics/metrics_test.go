package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveReshape(t *testing.T) {
	m := New("test")

	m.ObserveReshape("cli", 10*time.Millisecond, 6, 4, nil)
	m.ObserveReshape("cli", time.Millisecond, 99, 99, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reshapeTotal.WithLabelValues("cli", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reshapeTotal.WithLabelValues("cli", OutcomeError)))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.longRecords), "failed runs add no records")
	assert.Equal(t, 4.0, testutil.ToFloat64(m.summaryRecords))
}

func TestObserveHTTP(t *testing.T) {
	m := New("test")
	m.ObserveHTTP(http.MethodPost, "/api/v1/convert", http.StatusOK, time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/v1/convert", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReshape("cli", time.Second, 1, 1, nil)
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := New("test")
	m.ObserveReshape("cli", time.Millisecond, 2, 1, nil)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_reshape_operations_total")
	assert.Contains(t, w.Body.String(), "test_reshape_long_records_total 2")
}

func TestNewIsolatedRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("test")
		New("test")
	})
}
