package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports metrics through a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	identityCache    *prometheus.CounterVec
	rateLimited      prometheus.Counter
	deckMutations    *prometheus.CounterVec
	cardMutations    *prometheus.CounterVec
	reviewsPublished *prometheus.CounterVec
	reviewsProcessed *prometheus.CounterVec
	reviewBatchSize  prometheus.Histogram
	reviewBatchTime  prometheus.Histogram
	reviewQueueDepth prometheus.Gauge
}

// NewPrometheus registers all collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flashdeck_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flashdeck_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		identityCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flashdeck_identity_cache_total",
			Help: "Identity cache lookups by result",
		}, []string{"result"}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "flashdeck_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
		deckMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flashdeck_deck_mutations_total",
			Help: "Deck mutations by operation",
		}, []string{"op"}),
		cardMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flashdeck_card_mutations_total",
			Help: "Card mutations by operation",
		}, []string{"op"}),
		reviewsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flashdeck_review_events_published_total",
			Help: "Review events published to the stream",
		}, []string{"status"}),
		reviewsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flashdeck_review_events_processed_total",
			Help: "Review events processed by the worker",
		}, []string{"status"}),
		reviewBatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flashdeck_review_batch_size",
			Help:    "Review events per processed batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		reviewBatchTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flashdeck_review_batch_duration_seconds",
			Help:    "Time spent persisting a review batch",
			Buckets: prometheus.DefBuckets,
		}),
		reviewQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flashdeck_review_queue_depth",
			Help: "Pending plus lagging review events in the consumer group",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncIdentityCacheHit()  { p.identityCache.WithLabelValues("hit").Inc() }
func (p *PrometheusRecorder) IncIdentityCacheMiss() { p.identityCache.WithLabelValues("miss").Inc() }
func (p *PrometheusRecorder) IncRateLimited()       { p.rateLimited.Inc() }

func (p *PrometheusRecorder) IncDeckMutation(op string) { p.deckMutations.WithLabelValues(op).Inc() }
func (p *PrometheusRecorder) IncCardMutation(op string) { p.cardMutations.WithLabelValues(op).Inc() }

func (p *PrometheusRecorder) IncReviewEventPublished(status string) {
	p.reviewsPublished.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncReviewEventProcessed(status string) {
	p.reviewsProcessed.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) ObserveReviewBatchSize(size int) {
	p.reviewBatchSize.Observe(float64(size))
}

func (p *PrometheusRecorder) ObserveReviewBatchDuration(duration time.Duration) {
	p.reviewBatchTime.Observe(duration.Seconds())
}

func (p *PrometheusRecorder) SetReviewQueueDepth(depth int64) {
	p.reviewQueueDepth.Set(float64(depth))
}
