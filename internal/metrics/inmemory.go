package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HTTPRequests       uint64
	IdentityCacheHits  uint64
	IdentityCacheMiss  uint64
	RateLimited        uint64
	DeckMutations      map[string]uint64
	CardMutations      map[string]uint64
	ReviewsPublished   map[string]uint64
	ReviewsProcessed   map[string]uint64
	ReviewBatches      uint64
	ReviewQueueDepth   int64
	ReviewBatchTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	httpRequests       uint64
	identityCacheHits  uint64
	identityCacheMiss  uint64
	rateLimited        uint64
	reviewBatches      uint64
	reviewQueueDepth   int64
	reviewBatchTotalNs int64

	mu               sync.Mutex
	deckMutations    map[string]uint64
	cardMutations    map[string]uint64
	reviewsPublished map[string]uint64
	reviewsProcessed map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		deckMutations:    make(map[string]uint64),
		cardMutations:    make(map[string]uint64),
		reviewsPublished: make(map[string]uint64),
		reviewsProcessed: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		HTTPRequests:       atomic.LoadUint64(&m.httpRequests),
		IdentityCacheHits:  atomic.LoadUint64(&m.identityCacheHits),
		IdentityCacheMiss:  atomic.LoadUint64(&m.identityCacheMiss),
		RateLimited:        atomic.LoadUint64(&m.rateLimited),
		DeckMutations:      copyCounts(m.deckMutations),
		CardMutations:      copyCounts(m.cardMutations),
		ReviewsPublished:   copyCounts(m.reviewsPublished),
		ReviewsProcessed:   copyCounts(m.reviewsProcessed),
		ReviewBatches:      atomic.LoadUint64(&m.reviewBatches),
		ReviewQueueDepth:   atomic.LoadInt64(&m.reviewQueueDepth),
		ReviewBatchTotalNs: atomic.LoadInt64(&m.reviewBatchTotalNs),
	}
}

func (m *InMemoryRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}

func (m *InMemoryRecorder) IncIdentityCacheHit() {
	atomic.AddUint64(&m.identityCacheHits, 1)
}

func (m *InMemoryRecorder) IncIdentityCacheMiss() {
	atomic.AddUint64(&m.identityCacheMiss, 1)
}

func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

func (m *InMemoryRecorder) IncDeckMutation(op string) {
	m.inc(m.deckMutations, op)
}

func (m *InMemoryRecorder) IncCardMutation(op string) {
	m.inc(m.cardMutations, op)
}

func (m *InMemoryRecorder) IncReviewEventPublished(status string) {
	m.inc(m.reviewsPublished, status)
}

func (m *InMemoryRecorder) IncReviewEventProcessed(status string) {
	m.inc(m.reviewsProcessed, status)
}

func (m *InMemoryRecorder) ObserveReviewBatchSize(int) {
	atomic.AddUint64(&m.reviewBatches, 1)
}

func (m *InMemoryRecorder) ObserveReviewBatchDuration(duration time.Duration) {
	atomic.AddInt64(&m.reviewBatchTotalNs, duration.Nanoseconds())
}

func (m *InMemoryRecorder) SetReviewQueueDepth(depth int64) {
	atomic.StoreInt64(&m.reviewQueueDepth, depth)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, label string) {
	m.mu.Lock()
	counts[label]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
