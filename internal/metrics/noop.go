package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (n *NoopRecorder) IncIdentityCacheHit()                                {}
func (n *NoopRecorder) IncIdentityCacheMiss()                               {}
func (n *NoopRecorder) IncRateLimited()                                     {}
func (n *NoopRecorder) IncDeckMutation(string)                              {}
func (n *NoopRecorder) IncCardMutation(string)                              {}
func (n *NoopRecorder) IncReviewEventPublished(string)                      {}
func (n *NoopRecorder) IncReviewEventProcessed(string)                      {}
func (n *NoopRecorder) ObserveReviewBatchSize(int)                          {}
func (n *NoopRecorder) ObserveReviewBatchDuration(time.Duration)            {}
func (n *NoopRecorder) SetReviewQueueDepth(int64)                           {}
