package client

import (
	"context"
	"net/url"

	"github.com/flashdeck/flashdeck/internal/model"
)

// CardInput is the body for creating or updating a card.
type CardInput struct {
	Front      string `json:"front"`
	Back       string `json:"back"`
	Difficulty string `json:"difficulty,omitempty"`
}

func cardsPath(deckID string) string {
	return "/decks/" + url.PathEscape(deckID) + "/cards"
}

func cardPath(deckID, cardID string) string {
	return cardsPath(deckID) + "/" + url.PathEscape(cardID)
}

// ListCards returns the cards of a deck, oldest first.
func (c *Client) ListCards(ctx context.Context, deckID string) ([]*model.FlashCard, error) {
	var cards []*model.FlashCard
	if err := c.get(ctx, cardsPath(deckID), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// CreateCard adds a card to a deck.
func (c *Client) CreateCard(ctx context.Context, deckID string, in CardInput) (*model.FlashCard, error) {
	var card model.FlashCard
	if err := c.post(ctx, cardsPath(deckID), in, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard replaces front, back and difficulty.
func (c *Client) UpdateCard(ctx context.Context, deckID, cardID string, in CardInput) (*model.FlashCard, error) {
	var card model.FlashCard
	if err := c.put(ctx, cardPath(deckID, cardID), in, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// RecordReview rates a card, incrementing its review count.
func (c *Client) RecordReview(ctx context.Context, deckID, cardID string, difficulty model.Difficulty) (*model.FlashCard, error) {
	var card model.FlashCard
	body := map[string]string{"difficulty": string(difficulty)}
	if err := c.post(ctx, cardPath(deckID, cardID)+"/review", body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteCard removes a card.
func (c *Client) DeleteCard(ctx context.Context, deckID, cardID string) error {
	return c.delete(ctx, cardPath(deckID, cardID))
}
