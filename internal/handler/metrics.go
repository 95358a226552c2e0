package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/flashdeck/flashdeck/internal/metrics"
)

// exporter is satisfied by recorders that serve their own exposition format.
type exporter interface {
	Handler() http.Handler
}

// MetricsHandler exposes recorder state at /metrics.
type MetricsHandler struct {
	recorder metrics.Recorder
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(recorder metrics.Recorder) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// Metrics delegates to a Prometheus registry when available and falls back
// to a text dump of in-memory counters.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	switch rec := h.recorder.(type) {
	case exporter:
		rec.Handler().ServeHTTP(w, r)
	case metrics.Snapshotter:
		writeSnapshot(w, rec.Snapshot())
	default:
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

func writeSnapshot(w http.ResponseWriter, snap metrics.Snapshot) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "flashdeck_http_requests_total %d\n", snap.HTTPRequests)
	writeMetric(w, "flashdeck_identity_cache_total{result=\"hit\"} %d\n", snap.IdentityCacheHits)
	writeMetric(w, "flashdeck_identity_cache_total{result=\"miss\"} %d\n", snap.IdentityCacheMiss)
	writeMetric(w, "flashdeck_rate_limited_total %d\n", snap.RateLimited)
	writeLabeled(w, "flashdeck_deck_mutations_total", "op", snap.DeckMutations)
	writeLabeled(w, "flashdeck_card_mutations_total", "op", snap.CardMutations)
	writeLabeled(w, "flashdeck_review_events_published_total", "status", snap.ReviewsPublished)
	writeLabeled(w, "flashdeck_review_events_processed_total", "status", snap.ReviewsProcessed)
	writeMetric(w, "flashdeck_review_batches_total %d\n", snap.ReviewBatches)
	writeMetric(w, "flashdeck_review_batch_duration_seconds_sum %.6f\n", float64(snap.ReviewBatchTotalNs)/1e9)
	writeMetric(w, "flashdeck_review_queue_depth %d\n", snap.ReviewQueueDepth)
}

func writeLabeled(w http.ResponseWriter, name, label string, counts map[string]uint64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, counts[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
