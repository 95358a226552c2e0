package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flashdeck/flashdeck/internal/handler/dto"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/service"
)

// CardService is the card behaviour the handler depends on.
type CardService interface {
	ListCards(ctx context.Context, userID, deckID string) ([]*model.FlashCard, error)
	CreateCard(ctx context.Context, userID, deckID string, input service.CardInput) (*model.FlashCard, error)
	UpdateCard(ctx context.Context, userID, deckID, cardID string, input service.CardInput) (*model.FlashCard, error)
	RecordReview(ctx context.Context, userID, deckID, cardID, difficulty string) (*model.FlashCard, error)
	DeleteCard(ctx context.Context, userID, deckID, cardID string) error
}

// CardHandler handles flash card API requests nested under a deck.
type CardHandler struct {
	cards CardService
	responder
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cards CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		cards:     cards,
		responder: newResponder(logger, "handler.card"),
	}
}

// List handles GET /decks/{id}/cards.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cards, err := h.cards.ListCards(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if cards == nil {
		cards = []*model.FlashCard{}
	}

	writeJSON(w, http.StatusOK, cards)
}

// Create handles POST /decks/{id}/cards.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CardRequest
	if !h.decode(w, r, &req) {
		return
	}

	card, err := h.cards.CreateCard(r.Context(), userID, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// Update handles PUT /decks/{id}/cards/{cardId}.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CardRequest
	if !h.decode(w, r, &req) {
		return
	}

	card, err := h.cards.UpdateCard(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "cardId"), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// Review handles POST /decks/{id}/cards/{cardId}/review.
func (h *CardHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	card, err := h.cards.RecordReview(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "cardId"), req.Difficulty)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// Delete handles DELETE /decks/{id}/cards/{cardId}.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.cards.DeleteCard(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "cardId")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
