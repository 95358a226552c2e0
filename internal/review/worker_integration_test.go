//go:build integration

package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck/internal/metrics"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/testutil"
)

type memoryStore struct {
	mu       sync.Mutex
	events   map[string]*model.ReviewEvent
	failures int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{events: make(map[string]*model.ReviewEvent)}
}

func (s *memoryStore) BulkInsert(_ context.Context, events []*model.ReviewEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("database unavailable")
	}
	for _, e := range events {
		if _, ok := s.events[e.EventID]; !ok {
			s.events[e.EventID] = e
		}
	}
	return nil
}

func (s *memoryStore) UpdateDailyStats(context.Context, []*model.ReviewEvent) error { return nil }

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	opts, err := redis.ParseURL(testutil.RequireEnv(t, "REDIS_URL"))
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, testutil.FlushRedis(context.Background(), client))
	return client
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIntegrationWorker_PersistsAndDeadLetters(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	rec := metrics.NewInMemory()

	pub := NewPublisher(client, quietLogger(), rec)
	for i := 0; i < 3; i++ {
		_, err := pub.Publish(ctx, validPayload())
		require.NoError(t, err)
	}
	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{payloadField: "not json"},
	}).Err())

	store := newMemoryStore()
	store.failures = 1
	worker := NewWorker(client, store, quietLogger(), NewConsumerID(), rec, WorkerOptions{
		BlockTimeout: 100 * time.Millisecond,
		BaseBackoff:  10 * time.Millisecond,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = worker.Run(runCtx) }()

	require.Eventually(t, func() bool { return store.count() == 3 }, 5*time.Second, 50*time.Millisecond)

	shutdownCtx, done := context.WithTimeout(ctx, 2*time.Second)
	defer done()
	require.NoError(t, worker.Shutdown(shutdownCtx))

	dlq, err := client.XLen(ctx, DeadLetterStreamKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), dlq)

	pending, err := client.XPending(ctx, StreamKey, ConsumerGroup).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)

	snap := rec.Snapshot()
	assert.Equal(t, uint64(3), snap.ReviewsProcessed["success"])
	assert.Equal(t, uint64(1), snap.ReviewsProcessed["dead_lettered"])
}

func TestIntegrationPublisher_PublishReviewAsync(t *testing.T) {
	client := newTestRedis(t)
	rec := metrics.NewInMemory()
	pub := NewPublisher(client, quietLogger(), rec)

	now := time.Now()
	pub.PublishReview(&model.FlashCard{ID: "c", DeckID: "d", Difficulty: model.DifficultyMedium, LastReviewed: &now}, "u")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pub.Flush(ctx))

	n, err := client.XLen(context.Background(), StreamKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, uint64(1), rec.Snapshot().ReviewsPublished["success"])
}
