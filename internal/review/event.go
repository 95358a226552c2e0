// Package review moves study ratings from the request path into durable
// review history through a Redis stream.
package review

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/flashdeck/flashdeck/internal/model"
)

const (
	// StreamKey is the Redis stream for review events.
	StreamKey = "stream:review_events"

	// DeadLetterStreamKey holds messages the worker could not decode.
	DeadLetterStreamKey = "stream:review_events:dlq"

	// ConsumerGroup is the Redis consumer group name.
	ConsumerGroup = "review_workers"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// MaxDeadLetterLen caps the dead-letter stream.
	MaxDeadLetterLen = 10000

	// PublishTimeout bounds a single asynchronous publish.
	PublishTimeout = 100 * time.Millisecond

	payloadField = "payload"
)

// Payload is the compact wire form stored in the stream.
type Payload struct {
	CardID     string `json:"cid"`
	DeckID     string `json:"did"`
	UserID     string `json:"uid"`
	Difficulty string `json:"d"`
	ReviewedAt int64  `json:"t"` // Unix milliseconds
}

// NewPayload builds the stream payload for a freshly reviewed card.
// A card without a review stamp is treated as reviewed now.
func NewPayload(card *model.FlashCard, userID string) Payload {
	reviewedAt := time.Now().UTC()
	if card.LastReviewed != nil {
		reviewedAt = card.LastReviewed.UTC()
	}
	return Payload{
		CardID:     card.ID,
		DeckID:     card.DeckID,
		UserID:     userID,
		Difficulty: string(card.Difficulty),
		ReviewedAt: reviewedAt.UnixMilli(),
	}
}

// toEvent converts a validated payload into a history row. The stream
// message id becomes the idempotency key.
func (p Payload) toEvent(streamID string) *model.ReviewEvent {
	return &model.ReviewEvent{
		ID:         ulid.Make().String(),
		EventID:    streamID,
		CardID:     p.CardID,
		DeckID:     p.DeckID,
		UserID:     p.UserID,
		Difficulty: model.Difficulty(p.Difficulty),
		ReviewedAt: time.UnixMilli(p.ReviewedAt).UTC(),
	}
}
