// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/flashdeck/flashdeck/internal/model"
)

// Service errors.
var (
	ErrDeckNotFound      = errors.New("deck not found")
	ErrCardNotFound      = errors.New("card not found")
	ErrInvalidName       = errors.New("deck name is required")
	ErrInvalidFront      = errors.New("card front is required")
	ErrInvalidBack       = errors.New("card back is required")
	ErrInvalidDifficulty = errors.New("difficulty must be one of easy, medium, hard")
	ErrInvalidRange      = errors.New("invalid date range")
)

// DeckRepository is the persistence contract for decks.
type DeckRepository interface {
	ListDecksByUser(ctx context.Context, userID string) ([]*model.Deck, error)
	GetDeck(ctx context.Context, id, userID string) (*model.Deck, error)
	CreateDeck(ctx context.Context, deck *model.Deck) error
	UpdateDeck(ctx context.Context, id, userID, name string, description *string) (*model.Deck, error)
	DeleteDeck(ctx context.Context, id, userID string) error
}

// CardRepository is the persistence contract for flash cards.
// Every method is scoped by the owning user.
type CardRepository interface {
	ListCards(ctx context.Context, deckID, userID string) ([]*model.FlashCard, error)
	CreateCard(ctx context.Context, userID string, card *model.FlashCard) error
	UpdateCard(ctx context.Context, userID string, card *model.FlashCard) (*model.FlashCard, error)
	RecordReview(ctx context.Context, cardID, deckID, userID string, difficulty model.Difficulty) (*model.FlashCard, error)
	DeleteCard(ctx context.Context, cardID, deckID, userID string) error
}

// StatsRepository reads review aggregates.
type StatsRepository interface {
	GetDailyStats(ctx context.Context, deckID string, from, to time.Time) ([]*model.DailyDeckStats, error)
	GetStatsSummary(ctx context.Context, deckID string, from, to time.Time) (*model.DeckStatsSummary, error)
}

// ReviewPublisher receives recorded reviews after they are stored.
// Implementations must not block the caller.
type ReviewPublisher interface {
	PublishReview(card *model.FlashCard, userID string)
}

type noopPublisher struct{}

func (noopPublisher) PublishReview(*model.FlashCard, string) {}

func newID() string {
	return ulid.Make().String()
}

// optionalText trims s and maps empty results to nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
