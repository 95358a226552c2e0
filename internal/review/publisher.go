package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/flashdeck/flashdeck/internal/metrics"
	"github.com/flashdeck/flashdeck/internal/model"
)

// Publisher appends review events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder

	inflight sync.WaitGroup
}

// NewPublisher creates a new review event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "review.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream and returns its stream id.
func (p *Publisher) Publish(ctx context.Context, payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal review event: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			payloadField: string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return id, nil
}

// PublishReview publishes a stored review in the background.
// Failures are logged and counted, never returned.
func (p *Publisher) PublishReview(card *model.FlashCard, userID string) {
	payload := NewPayload(card, userID)

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, payload)
		if err != nil {
			p.logger.Warn("failed to publish review event",
				"card_id", payload.CardID,
				"deck_id", payload.DeckID,
				"error", err,
			)
			p.metrics.IncReviewEventPublished("dropped")
			return
		}

		p.logger.Debug("review event published",
			"card_id", payload.CardID,
			"stream_id", streamID,
		)
		p.metrics.IncReviewEventPublished("success")
	}()
}

// Flush waits for in-flight publishes. It has the shutdown hook signature.
func (p *Publisher) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
