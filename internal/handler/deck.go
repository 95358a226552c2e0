package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flashdeck/flashdeck/internal/auth"
	"github.com/flashdeck/flashdeck/internal/handler/dto"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/service"
)

// DeckService is the deck behaviour the handler depends on.
type DeckService interface {
	ListDecks(ctx context.Context, userID string) ([]*model.Deck, error)
	GetDeck(ctx context.Context, userID, deckID string) (*model.Deck, error)
	CreateDeck(ctx context.Context, userID string, input service.DeckInput) (*model.Deck, error)
	UpdateDeck(ctx context.Context, userID, deckID string, input service.DeckInput) (*model.Deck, error)
	DeleteDeck(ctx context.Context, userID, deckID string) error
}

// StatsService reads deck review statistics.
type StatsService interface {
	GetDeckStats(ctx context.Context, userID, deckID, from, to string) (*service.DeckStats, error)
}

// DeckHandler handles deck API requests.
type DeckHandler struct {
	decks DeckService
	stats StatsService
	responder
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks DeckService, stats StatsService, logger *slog.Logger) *DeckHandler {
	return &DeckHandler{
		decks:     decks,
		stats:     stats,
		responder: newResponder(logger, "handler.deck"),
	}
}

// List handles GET /decks.
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	decks, err := h.decks.ListDecks(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if decks == nil {
		decks = []*model.Deck{}
	}

	writeJSON(w, http.StatusOK, decks)
}

// Get handles GET /decks/{id}.
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	deck, err := h.decks.GetDeck(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

// Create handles POST /decks.
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.DeckRequest
	if !h.decode(w, r, &req) {
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), userID, req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

// Update handles PUT /decks/{id}.
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.DeckRequest
	if !h.decode(w, r, &req) {
		return
	}

	deck, err := h.decks.UpdateDeck(r.Context(), userID, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

// Delete handles DELETE /decks/{id}.
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.decks.DeleteDeck(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// Stats handles GET /decks/{id}/stats?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *DeckHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	stats, err := h.stats.GetDeckStats(r.Context(), userID, chi.URLParam(r, "id"), query.Get("from"), query.Get("to"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDeckStatsResponse(stats))
}

// requireUser returns the resolved caller. The identity middleware normally
// rejects anonymous requests first.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}
