package client

import (
	"context"
	"net/url"

	"github.com/flashdeck/flashdeck/internal/handler/dto"
	"github.com/flashdeck/flashdeck/internal/model"
)

// DeckInput is the body for creating or renaming a deck.
type DeckInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ListDecks returns the caller's decks, newest first.
func (c *Client) ListDecks(ctx context.Context) ([]*model.Deck, error) {
	var decks []*model.Deck
	if err := c.get(ctx, "/decks", &decks); err != nil {
		return nil, err
	}
	return decks, nil
}

// GetDeck fetches one deck.
func (c *Client) GetDeck(ctx context.Context, deckID string) (*model.Deck, error) {
	var deck model.Deck
	if err := c.get(ctx, "/decks/"+url.PathEscape(deckID), &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// CreateDeck creates a deck.
func (c *Client) CreateDeck(ctx context.Context, in DeckInput) (*model.Deck, error) {
	var deck model.Deck
	if err := c.post(ctx, "/decks", in, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// UpdateDeck replaces a deck's name and description.
func (c *Client) UpdateDeck(ctx context.Context, deckID string, in DeckInput) (*model.Deck, error) {
	var deck model.Deck
	if err := c.put(ctx, "/decks/"+url.PathEscape(deckID), in, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// DeleteDeck deletes a deck and its cards.
func (c *Client) DeleteDeck(ctx context.Context, deckID string) error {
	return c.delete(ctx, "/decks/"+url.PathEscape(deckID))
}

// DeckStats reads review statistics; empty from/to use the server default window.
func (c *Client) DeckStats(ctx context.Context, deckID, from, to string) (*dto.DeckStatsResponse, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	path := "/decks/" + url.PathEscape(deckID) + "/stats"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var stats dto.DeckStatsResponse
	if err := c.get(ctx, path, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
