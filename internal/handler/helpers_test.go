package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/flashdeck/flashdeck/internal/auth"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/service"
)

const testUserID = "01HZX0USER000000000000000"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockDeckService struct{ mock.Mock }

func (m *mockDeckService) ListDecks(ctx context.Context, userID string) ([]*model.Deck, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Deck), args.Error(1)
}

func (m *mockDeckService) GetDeck(ctx context.Context, userID, deckID string) (*model.Deck, error) {
	args := m.Called(ctx, userID, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Deck), args.Error(1)
}

func (m *mockDeckService) CreateDeck(ctx context.Context, userID string, input service.DeckInput) (*model.Deck, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Deck), args.Error(1)
}

func (m *mockDeckService) UpdateDeck(ctx context.Context, userID, deckID string, input service.DeckInput) (*model.Deck, error) {
	args := m.Called(ctx, userID, deckID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Deck), args.Error(1)
}

func (m *mockDeckService) DeleteDeck(ctx context.Context, userID, deckID string) error {
	return m.Called(ctx, userID, deckID).Error(0)
}

type mockStatsService struct{ mock.Mock }

func (m *mockStatsService) GetDeckStats(ctx context.Context, userID, deckID, from, to string) (*service.DeckStats, error) {
	args := m.Called(ctx, userID, deckID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeckStats), args.Error(1)
}

type mockCardService struct{ mock.Mock }

func (m *mockCardService) ListCards(ctx context.Context, userID, deckID string) ([]*model.FlashCard, error) {
	args := m.Called(ctx, userID, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FlashCard), args.Error(1)
}

func (m *mockCardService) CreateCard(ctx context.Context, userID, deckID string, input service.CardInput) (*model.FlashCard, error) {
	args := m.Called(ctx, userID, deckID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlashCard), args.Error(1)
}

func (m *mockCardService) UpdateCard(ctx context.Context, userID, deckID, cardID string, input service.CardInput) (*model.FlashCard, error) {
	args := m.Called(ctx, userID, deckID, cardID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlashCard), args.Error(1)
}

func (m *mockCardService) RecordReview(ctx context.Context, userID, deckID, cardID, difficulty string) (*model.FlashCard, error) {
	args := m.Called(ctx, userID, deckID, cardID, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlashCard), args.Error(1)
}

func (m *mockCardService) DeleteCard(ctx context.Context, userID, deckID, cardID string) error {
	return m.Called(ctx, userID, deckID, cardID).Error(0)
}

// newTestRouter mounts the resource handlers the way the server does and
// injects a fixed identity.
func newTestRouter(decks *DeckHandler, cards *CardHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.ContextWithIdentity(req.Context(), &auth.Identity{UserID: testUserID, Email: "ada@flashdeck.test"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/decks", func(r chi.Router) {
		if decks != nil {
			r.Get("/", decks.List)
			r.Post("/", decks.Create)
			r.Get("/{id}", decks.Get)
			r.Put("/{id}", decks.Update)
			r.Delete("/{id}", decks.Delete)
			r.Get("/{id}/stats", decks.Stats)
		}
		if cards != nil {
			r.Get("/{id}/cards", cards.List)
			r.Post("/{id}/cards", cards.Create)
			r.Put("/{id}/cards/{cardId}", cards.Update)
			r.Delete("/{id}/cards/{cardId}", cards.Delete)
			r.Post("/{id}/cards/{cardId}/review", cards.Review)
		}
	})
	return r
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
