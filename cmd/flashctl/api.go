package main

import (
	"context"

	"github.com/flashdeck/flashdeck/internal/client"
	"github.com/flashdeck/flashdeck/internal/model"
)

// apiClient is the part of client.Client the commands use.
type apiClient interface {
	ListDecks(ctx context.Context) ([]*model.Deck, error)
	CreateDeck(ctx context.Context, in client.DeckInput) (*model.Deck, error)
	DeleteDeck(ctx context.Context, deckID string) error
	ListCards(ctx context.Context, deckID string) ([]*model.FlashCard, error)
	CreateCard(ctx context.Context, deckID string, in client.CardInput) (*model.FlashCard, error)
	RecordReview(ctx context.Context, deckID, cardID string, difficulty model.Difficulty) (*model.FlashCard, error)
}
