// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
type Recorder interface {
	// HTTP metrics; route is the chi route pattern, never the raw path.
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)

	// Identity resolution
	IncIdentityCacheHit()
	IncIdentityCacheMiss()
	IncRateLimited()

	// Domain mutations
	IncDeckMutation(op string) // op: "create", "update", "delete"
	IncCardMutation(op string) // op: "create", "update", "delete", "review"

	// Review event pipeline
	IncReviewEventPublished(status string) // status: "success" or "dropped"
	IncReviewEventProcessed(status string) // status: "success", "failed", "dead_lettered"
	ObserveReviewBatchSize(size int)
	ObserveReviewBatchDuration(duration time.Duration)
	SetReviewQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
