package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/reco/{model_name}/{user_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for range 3 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reco/als/1", nil))
	}

	count := testutil.ToFloat64(m.RequestCount.WithLabelValues("GET", "/reco/{model_name}/{user_id}", "404"))
	assert.Equal(t, 3.0, count)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInProgress))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RequestCount.WithLabelValues("GET", "/health", "200").Inc()
	m.CacheHits.WithLabelValues("als", "reco").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "request_count"))
	assert.True(t, strings.Contains(body, "requests_in_progress"))
	assert.True(t, strings.Contains(body, `reco_cache_hits_total{kind="reco",model="als"} 1`))
}
