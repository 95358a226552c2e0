package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/flashdeck/flashdeck/internal/model"
)

// MockDeckRepository is a mock implementation of DeckRepository.
type MockDeckRepository struct {
	mock.Mock
}

func (m *MockDeckRepository) ListDecksByUser(ctx context.Context, userID string) ([]*model.Deck, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Deck), args.Error(1)
}

func (m *MockDeckRepository) GetDeck(ctx context.Context, id, userID string) (*model.Deck, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Deck), args.Error(1)
}

func (m *MockDeckRepository) CreateDeck(ctx context.Context, deck *model.Deck) error {
	args := m.Called(ctx, deck)
	return args.Error(0)
}

func (m *MockDeckRepository) UpdateDeck(ctx context.Context, id, userID, name string, description *string) (*model.Deck, error) {
	args := m.Called(ctx, id, userID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Deck), args.Error(1)
}

func (m *MockDeckRepository) DeleteDeck(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockCardRepository is a mock implementation of CardRepository.
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) ListCards(ctx context.Context, deckID, userID string) ([]*model.FlashCard, error) {
	args := m.Called(ctx, deckID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FlashCard), args.Error(1)
}

func (m *MockCardRepository) CreateCard(ctx context.Context, userID string, card *model.FlashCard) error {
	args := m.Called(ctx, userID, card)
	return args.Error(0)
}

func (m *MockCardRepository) UpdateCard(ctx context.Context, userID string, card *model.FlashCard) (*model.FlashCard, error) {
	args := m.Called(ctx, userID, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlashCard), args.Error(1)
}

func (m *MockCardRepository) RecordReview(ctx context.Context, cardID, deckID, userID string, difficulty model.Difficulty) (*model.FlashCard, error) {
	args := m.Called(ctx, cardID, deckID, userID, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlashCard), args.Error(1)
}

func (m *MockCardRepository) DeleteCard(ctx context.Context, cardID, deckID, userID string) error {
	args := m.Called(ctx, cardID, deckID, userID)
	return args.Error(0)
}

// MockStatsRepository is a mock implementation of StatsRepository.
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetDailyStats(ctx context.Context, deckID string, from, to time.Time) ([]*model.DailyDeckStats, error) {
	args := m.Called(ctx, deckID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DailyDeckStats), args.Error(1)
}

func (m *MockStatsRepository) GetStatsSummary(ctx context.Context, deckID string, from, to time.Time) (*model.DeckStatsSummary, error) {
	args := m.Called(ctx, deckID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeckStatsSummary), args.Error(1)
}

// MockReviewPublisher records published reviews.
type MockReviewPublisher struct {
	mock.Mock
}

func (m *MockReviewPublisher) PublishReview(card *model.FlashCard, userID string) {
	m.Called(card, userID)
}
