package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flashdeck/flashdeck/internal/metrics"
	"github.com/flashdeck/flashdeck/internal/model"
)

// Worker defaults.
const (
	DefaultBatchSize       = 500
	DefaultBlockTimeout    = 5 * time.Second
	DefaultMaxAttempts     = 3
	DefaultBaseBackoff     = time.Second
	DefaultClaimInterval   = 10 * time.Second
	DefaultClaimIdle       = 30 * time.Second
	DefaultMetricsInterval = 5 * time.Second
)

// Store persists review history and refreshes daily aggregates.
type Store interface {
	BulkInsert(ctx context.Context, events []*model.ReviewEvent) error
	UpdateDailyStats(ctx context.Context, events []*model.ReviewEvent) error
}

// WorkerOptions tunes the worker loop. Zero values select the defaults.
type WorkerOptions struct {
	BatchSize       int
	BlockTimeout    time.Duration
	MaxAttempts     int
	BaseBackoff     time.Duration
	ClaimInterval   time.Duration
	ClaimIdle       time.Duration
	MetricsInterval time.Duration
}

func (o WorkerOptions) withDefaults() WorkerOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.BlockTimeout <= 0 {
		o.BlockTimeout = DefaultBlockTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = DefaultBaseBackoff
	}
	if o.ClaimInterval <= 0 {
		o.ClaimInterval = DefaultClaimInterval
	}
	if o.ClaimIdle <= 0 {
		o.ClaimIdle = DefaultClaimIdle
	}
	if o.MetricsInterval <= 0 {
		o.MetricsInterval = DefaultMetricsInterval
	}
	return o
}

// Worker consumes the review stream and writes review history.
type Worker struct {
	redis      *redis.Client
	store      Store
	logger     *slog.Logger
	metrics    metrics.Recorder
	consumerID string
	opts       WorkerOptions

	claimCursor string
	lastClaim   time.Time
	lastMetrics time.Time

	mu       sync.Mutex
	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewWorker creates a review worker registered under consumerID.
func NewWorker(client *redis.Client, store Store, logger *slog.Logger, consumerID string, recorder metrics.Recorder, opts WorkerOptions) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		redis:       client,
		store:       store,
		logger:      logger.With("component", "review.worker", "consumer_id", consumerID),
		metrics:     recorder,
		consumerID:  consumerID,
		opts:        opts.withDefaults(),
		claimCursor: "0-0",
	}
}

// Run blocks until ctx is cancelled or Shutdown is called.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("review worker already started")
	}
	w.started = true
	w.done = make(chan struct{})
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	defer close(w.done)

	if err := w.ensureGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	w.logger.Info("review worker started")

	for {
		if w.isDraining() {
			w.logger.Info("review worker drained")
			return nil
		}

		select {
		case <-ctx.Done():
			if w.isDraining() {
				return nil
			}
			return ctx.Err()
		default:
		}

		if err := w.processOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Error("review batch failed", "error", err)
			sleep(ctx, time.Second)
		}
	}
}

// Shutdown stops the loop after the in-flight batch and waits for it.
// It has the server shutdown hook signature.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.draining = true
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	w.logger.Info("review worker shutdown initiated")
	cancel()

	select {
	case <-done:
		w.logger.Info("review worker shutdown complete")
		return nil
	case <-ctx.Done():
		w.logger.Warn("review worker shutdown timed out")
		return ctx.Err()
	}
}

func (w *Worker) isDraining() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draining
}

func (w *Worker) ensureGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (w *Worker) processOnce(ctx context.Context) error {
	w.refreshQueueDepth(ctx)

	messages, err := w.claimStale(ctx)
	if err != nil {
		w.logger.Warn("failed to claim pending review events", "error", err)
	}
	if len(messages) == 0 {
		messages, err = w.read(ctx)
		if err != nil {
			return err
		}
	}
	if len(messages) == 0 {
		return nil
	}

	events, ids := w.decode(ctx, messages)
	if len(events) > 0 {
		// The batch keeps running on a detached context so a shutdown
		// signal does not abandon a half-written batch.
		batchCtx := context.WithoutCancel(ctx)
		if err := w.persistWithRetry(ctx, batchCtx, events); err != nil {
			// Left un-ACKed; XAUTOCLAIM picks the batch up again.
			return err
		}
	}

	return w.ack(context.WithoutCancel(ctx), ids)
}

func (w *Worker) claimStale(ctx context.Context) ([]redis.XMessage, error) {
	if !w.lastClaim.IsZero() && time.Since(w.lastClaim) < w.opts.ClaimInterval {
		return nil, nil
	}
	w.lastClaim = time.Now()

	messages, next, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		MinIdle:  w.opts.ClaimIdle,
		Start:    w.claimCursor,
		Count:    int64(w.opts.BatchSize),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if next != "" {
		w.claimCursor = next
	}
	return messages, nil
}

func (w *Worker) refreshQueueDepth(ctx context.Context) {
	if !w.lastMetrics.IsZero() && time.Since(w.lastMetrics) < w.opts.MetricsInterval {
		return
	}
	w.lastMetrics = time.Now()

	groups, err := w.redis.XInfoGroups(ctx, StreamKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		w.logger.Warn("failed to read stream group info", "error", err)
		return
	}
	for _, group := range groups {
		if group.Name == ConsumerGroup {
			w.metrics.SetReviewQueueDepth(group.Pending + group.Lag)
			return
		}
	}
}

func (w *Worker) read(ctx context.Context) ([]redis.XMessage, error) {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.opts.BatchSize),
		Block:    w.opts.BlockTimeout,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return streams[0].Messages, nil
}

// decode returns the valid events plus every message id in the batch.
// Undecodable messages are dead-lettered and still acknowledged.
func (w *Worker) decode(ctx context.Context, messages []redis.XMessage) ([]*model.ReviewEvent, []string) {
	events := make([]*model.ReviewEvent, 0, len(messages))
	ids := make([]string, 0, len(messages))

	for _, msg := range messages {
		ids = append(ids, msg.ID)

		event, reason, err := decodeMessage(msg)
		if err != nil {
			w.deadLetter(ctx, msg, reason, err.Error())
			continue
		}
		events = append(events, event)
	}

	return events, ids
}

func decodeMessage(msg redis.XMessage) (*model.ReviewEvent, string, error) {
	raw, ok := msg.Values[payloadField].(string)
	if !ok {
		return nil, "invalid_format", errors.New("payload field missing or not a string")
	}

	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, "unmarshal_error", err
	}
	if err := ValidatePayload(payload); err != nil {
		return nil, "validation_error", err
	}

	return payload.toEvent(msg.ID), "", nil
}

func (w *Worker) deadLetter(ctx context.Context, msg redis.XMessage, reason, detail string) {
	w.logger.Warn("dead-lettering review event",
		"message_id", msg.ID,
		"reason", reason,
		"detail", detail,
	)

	err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		MaxLen: MaxDeadLetterLen,
		Approx: true,
		Values: map[string]interface{}{
			"original_id":      msg.ID,
			"reason":           reason,
			"detail":           detail,
			payloadField:       fmt.Sprint(msg.Values[payloadField]),
			"dead_lettered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		w.logger.Error("failed to write dead-letter entry", "message_id", msg.ID, "error", err)
	}

	w.metrics.IncReviewEventProcessed("dead_lettered")
}

// persistWithRetry retries with exponential backoff. Backoff sleeps stop
// early on shutdown; the write itself runs on batchCtx.
func (w *Worker) persistWithRetry(loopCtx, batchCtx context.Context, events []*model.ReviewEvent) error {
	var lastErr error

	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		lastErr = w.persist(batchCtx, events)
		if lastErr == nil {
			return nil
		}
		if attempt == w.opts.MaxAttempts {
			break
		}

		backoff := w.opts.BaseBackoff << (attempt - 1)
		w.logger.Warn("review batch failed, retrying",
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", lastErr,
		)
		if !sleep(loopCtx, backoff) {
			break
		}
	}

	for range events {
		w.metrics.IncReviewEventProcessed("failed")
	}
	return lastErr
}

func (w *Worker) persist(ctx context.Context, events []*model.ReviewEvent) error {
	start := time.Now()

	if err := w.store.BulkInsert(ctx, events); err != nil {
		return fmt.Errorf("bulk insert: %w", err)
	}
	if err := w.store.UpdateDailyStats(ctx, events); err != nil {
		return fmt.Errorf("update daily stats: %w", err)
	}

	elapsed := time.Since(start)
	w.logger.Info("review batch persisted",
		"events", len(events),
		"duration_ms", float64(elapsed.Microseconds())/1000,
	)

	w.metrics.ObserveReviewBatchSize(len(events))
	w.metrics.ObserveReviewBatchDuration(elapsed)
	for range events {
		w.metrics.IncReviewEventProcessed("success")
	}
	return nil
}

func (w *Worker) ack(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, ids...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
