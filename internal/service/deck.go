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

// DeckService handles deck business logic.
type DeckService struct {
	repo    DeckRepository
	metrics metrics.Recorder
}

// NewDeckService creates a new DeckService.
func NewDeckService(repo DeckRepository, recorder metrics.Recorder) *DeckService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DeckService{
		repo:    repo,
		metrics: recorder,
	}
}

// DeckInput carries the writable deck fields.
type DeckInput struct {
	Name        string
	Description *string
}

func (in DeckInput) normalize() (string, *string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", nil, ErrInvalidName
	}
	return name, optionalText(in.Description), nil
}

// ListDecks returns the user's decks, most recently updated first.
func (s *DeckService) ListDecks(ctx context.Context, userID string) ([]*model.Deck, error) {
	decks, err := s.repo.ListDecksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// GetDeck returns one owned deck.
func (s *DeckService) GetDeck(ctx context.Context, userID, deckID string) (*model.Deck, error) {
	deck, err := s.repo.GetDeck(ctx, deckID, userID)
	if err != nil {
		return nil, mapDeckError(err)
	}
	return deck, nil
}

// CreateDeck validates the input and stores a new empty deck.
func (s *DeckService) CreateDeck(ctx context.Context, userID string, input DeckInput) (*model.Deck, error) {
	name, description, err := input.normalize()
	if err != nil {
		return nil, err
	}

	deck := &model.Deck{
		ID:          newID(),
		Name:        name,
		Description: description,
		UserID:      userID,
	}

	if err := s.repo.CreateDeck(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	s.metrics.IncDeckMutation("create")
	return deck, nil
}

// UpdateDeck renames or re-describes an owned deck.
func (s *DeckService) UpdateDeck(ctx context.Context, userID, deckID string, input DeckInput) (*model.Deck, error) {
	name, description, err := input.normalize()
	if err != nil {
		return nil, err
	}

	deck, err := s.repo.UpdateDeck(ctx, deckID, userID, name, description)
	if err != nil {
		return nil, mapDeckError(err)
	}

	s.metrics.IncDeckMutation("update")
	return deck, nil
}

// DeleteDeck removes an owned deck together with its cards.
func (s *DeckService) DeleteDeck(ctx context.Context, userID, deckID string) error {
	if err := s.repo.DeleteDeck(ctx, deckID, userID); err != nil {
		return mapDeckError(err)
	}

	s.metrics.IncDeckMutation("delete")
	return nil
}

func mapDeckError(err error) error {
	if errors.Is(err, repository.ErrDeckNotFound) {
		return ErrDeckNotFound
	}
	return err
}
