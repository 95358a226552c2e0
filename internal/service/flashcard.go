package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flashdeck/flashdeck/internal/metrics"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/repository"
)

// CardService handles flash card business logic.
type CardService struct {
	repo      CardRepository
	publisher ReviewPublisher
	metrics   metrics.Recorder
}

// NewCardService creates a new CardService. A nil publisher disables
// review event publishing.
func NewCardService(repo CardRepository, publisher ReviewPublisher, recorder metrics.Recorder) *CardService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &CardService{
		repo:      repo,
		publisher: publisher,
		metrics:   recorder,
	}
}

// CardInput carries the writable card fields. Difficulty is the raw client
// value; empty means medium on create and "unchanged" on update.
type CardInput struct {
	Front      string
	Back       string
	Difficulty string
}

func (in CardInput) text() (string, string, error) {
	front := strings.TrimSpace(in.Front)
	if front == "" {
		return "", "", ErrInvalidFront
	}
	back := strings.TrimSpace(in.Back)
	if back == "" {
		return "", "", ErrInvalidBack
	}
	return front, back, nil
}

func (in CardInput) normalize() (string, string, model.Difficulty, error) {
	front, back, err := in.text()
	if err != nil {
		return "", "", "", err
	}
	difficulty, err := model.ParseDifficulty(in.Difficulty)
	if err != nil {
		return "", "", "", ErrInvalidDifficulty
	}
	return front, back, difficulty, nil
}

// ListCards returns the cards of an owned deck, newest first.
func (s *CardService) ListCards(ctx context.Context, userID, deckID string) ([]*model.FlashCard, error) {
	cards, err := s.repo.ListCards(ctx, deckID, userID)
	if err != nil {
		return nil, mapCardError(err)
	}
	return cards, nil
}

// CreateCard adds a card to an owned deck and bumps the deck's card count.
func (s *CardService) CreateCard(ctx context.Context, userID, deckID string, input CardInput) (*model.FlashCard, error) {
	front, back, difficulty, err := input.normalize()
	if err != nil {
		return nil, err
	}

	card := &model.FlashCard{
		ID:         newID(),
		Front:      front,
		Back:       back,
		Difficulty: difficulty,
		DeckID:     deckID,
	}

	if err := s.repo.CreateCard(ctx, userID, card); err != nil {
		return nil, mapCardError(err)
	}

	s.metrics.IncCardMutation("create")
	return card, nil
}

// UpdateCard rewrites front and back, and difficulty when one is given.
// Review state is kept.
func (s *CardService) UpdateCard(ctx context.Context, userID, deckID, cardID string, input CardInput) (*model.FlashCard, error) {
	front, back, err := input.text()
	if err != nil {
		return nil, err
	}

	// Zero value tells the store to keep the current difficulty.
	var difficulty model.Difficulty
	if strings.TrimSpace(input.Difficulty) != "" {
		if difficulty, err = model.ParseDifficulty(input.Difficulty); err != nil {
			return nil, ErrInvalidDifficulty
		}
	}

	card, err := s.repo.UpdateCard(ctx, userID, &model.FlashCard{
		ID:         cardID,
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		Difficulty: difficulty,
	})
	if err != nil {
		return nil, mapCardError(err)
	}

	s.metrics.IncCardMutation("update")
	return card, nil
}

// RecordReview stores a study rating on an owned card and publishes
// a review event once the write has committed.
func (s *CardService) RecordReview(ctx context.Context, userID, deckID, cardID, rawDifficulty string) (*model.FlashCard, error) {
	if strings.TrimSpace(rawDifficulty) == "" {
		return nil, ErrInvalidDifficulty
	}
	difficulty, err := model.ParseDifficulty(rawDifficulty)
	if err != nil {
		return nil, ErrInvalidDifficulty
	}

	card, err := s.repo.RecordReview(ctx, cardID, deckID, userID, difficulty)
	if err != nil {
		return nil, mapCardError(err)
	}

	s.metrics.IncCardMutation("review")
	s.publisher.PublishReview(card, userID)
	return card, nil
}

// DeleteCard removes a card and decrements the deck's card count.
func (s *CardService) DeleteCard(ctx context.Context, userID, deckID, cardID string) error {
	if err := s.repo.DeleteCard(ctx, cardID, deckID, userID); err != nil {
		return mapCardError(err)
	}

	s.metrics.IncCardMutation("delete")
	return nil
}

func mapCardError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDeckNotFound):
		return ErrDeckNotFound
	case errors.Is(err, repository.ErrCardNotFound):
		return ErrCardNotFound
	default:
		return fmt.Errorf("card store: %w", err)
	}
}
