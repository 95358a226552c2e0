package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/flashdeck/flashdeck/internal/metrics"
)

func TestMetrics_UsesRoutePattern(t *testing.T) {
	recorder := metrics.NewPrometheus()

	r := chi.NewRouter()
	r.Use(Metrics(recorder))
	r.Get("/decks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/decks/"+id, nil))
	}

	assert.Equal(t, 1, testutil.CollectAndCount(recorder.Registry(), "flashdeck_http_requests_total"))
	body := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(body, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, body.Body.String(), `flashdeck_http_requests_total{method="GET",route="/decks/{id}",status="404"} 3`)
}
