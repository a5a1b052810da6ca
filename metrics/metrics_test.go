package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveRequest("spotify", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("spotify", http.StatusOK, 30*time.Millisecond)
	m.ObserveRequest("spotify", http.StatusInternalServerError, time.Millisecond)
	m.ObserveTokenRefresh("google", "refreshed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("spotify", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("spotify", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenRefreshTotal.WithLabelValues("google", "refreshed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("calendar", http.StatusOK, time.Second)
		m.ObserveTokenRefresh("spotify", "error")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveTokenRefresh("spotify", "cached")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `portfolio_token_refresh_total{outcome="cached",service="spotify"} 1`)
}
