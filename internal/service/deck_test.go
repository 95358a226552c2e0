package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck/internal/metrics"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestDeckService_CreateDeck(t *testing.T) {
	ctx := context.Background()

	t.Run("trims name and drops blank description", func(t *testing.T) {
		repo := new(MockDeckRepository)
		rec := metrics.NewInMemory()
		svc := NewDeckService(repo, rec)

		stamped := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		repo.On("CreateDeck", ctx, mock.MatchedBy(func(d *model.Deck) bool {
			return d.Name == "Biology" && d.Description == nil && d.UserID == "user-1" && d.CardCount == 0 &&
				d.CreatedAt.IsZero() && d.UpdatedAt.IsZero()
		})).Run(func(args mock.Arguments) {
			d := args.Get(1).(*model.Deck)
			d.CreatedAt, d.UpdatedAt = stamped, stamped
		}).Return(nil)

		deck, err := svc.CreateDeck(ctx, "user-1", DeckInput{Name: "  Biology  ", Description: strPtr("   ")})
		require.NoError(t, err)
		assert.Equal(t, "Biology", deck.Name)
		assert.Nil(t, deck.Description)
		assert.Len(t, deck.ID, 26)
		assert.Equal(t, stamped, deck.CreatedAt)
		assert.Equal(t, stamped, deck.UpdatedAt)
		assert.Equal(t, uint64(1), rec.Snapshot().DeckMutations["create"])
		repo.AssertExpectations(t)
	})

	t.Run("keeps trimmed description", func(t *testing.T) {
		repo := new(MockDeckRepository)
		svc := NewDeckService(repo, nil)

		repo.On("CreateDeck", ctx, mock.Anything).Return(nil)

		deck, err := svc.CreateDeck(ctx, "user-1", DeckInput{Name: "Chem", Description: strPtr(" organic ")})
		require.NoError(t, err)
		require.NotNil(t, deck.Description)
		assert.Equal(t, "organic", *deck.Description)
	})

	t.Run("rejects whitespace name", func(t *testing.T) {
		repo := new(MockDeckRepository)
		svc := NewDeckService(repo, nil)

		_, err := svc.CreateDeck(ctx, "user-1", DeckInput{Name: " \t\n "})
		assert.ErrorIs(t, err, ErrInvalidName)
		repo.AssertNotCalled(t, "CreateDeck", mock.Anything, mock.Anything)
	})

	t.Run("wraps storage errors", func(t *testing.T) {
		repo := new(MockDeckRepository)
		svc := NewDeckService(repo, nil)
		boom := errors.New("connection reset")

		repo.On("CreateDeck", ctx, mock.Anything).Return(boom)

		_, err := svc.CreateDeck(ctx, "user-1", DeckInput{Name: "Physics"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestDeckService_UpdateDeck(t *testing.T) {
	ctx := context.Background()

	t.Run("updates owned deck", func(t *testing.T) {
		repo := new(MockDeckRepository)
		svc := NewDeckService(repo, nil)
		want := &model.Deck{ID: "deck-1", Name: "Renamed", UserID: "user-1"}

		repo.On("UpdateDeck", ctx, "deck-1", "user-1", "Renamed", (*string)(nil)).Return(want, nil)

		got, err := svc.UpdateDeck(ctx, "user-1", "deck-1", DeckInput{Name: " Renamed "})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("foreign deck maps to not found", func(t *testing.T) {
		repo := new(MockDeckRepository)
		svc := NewDeckService(repo, nil)

		repo.On("UpdateDeck", ctx, "deck-9", "user-1", "Name", (*string)(nil)).Return(nil, repository.ErrDeckNotFound)

		_, err := svc.UpdateDeck(ctx, "user-1", "deck-9", DeckInput{Name: "Name"})
		assert.ErrorIs(t, err, ErrDeckNotFound)
	})

	t.Run("validates before touching storage", func(t *testing.T) {
		repo := new(MockDeckRepository)
		svc := NewDeckService(repo, nil)

		_, err := svc.UpdateDeck(ctx, "user-1", "deck-1", DeckInput{Name: ""})
		assert.ErrorIs(t, err, ErrInvalidName)
		repo.AssertNotCalled(t, "UpdateDeck", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeckService_DeleteDeck(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDeckRepository)
	rec := metrics.NewInMemory()
	svc := NewDeckService(repo, rec)

	repo.On("DeleteDeck", ctx, "deck-1", "user-1").Return(nil)
	repo.On("DeleteDeck", ctx, "deck-2", "user-1").Return(repository.ErrDeckNotFound)

	require.NoError(t, svc.DeleteDeck(ctx, "user-1", "deck-1"))
	assert.ErrorIs(t, svc.DeleteDeck(ctx, "user-1", "deck-2"), ErrDeckNotFound)
	assert.Equal(t, uint64(1), rec.Snapshot().DeckMutations["delete"])
}

func TestDeckService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDeckRepository)
	svc := NewDeckService(repo, nil)

	decks := []*model.Deck{{ID: "a"}, {ID: "b"}}
	repo.On("ListDecksByUser", ctx, "user-1").Return(decks, nil)
	repo.On("GetDeck", ctx, "a", "user-1").Return(decks[0], nil)
	repo.On("GetDeck", ctx, "zzz", "user-1").Return(nil, repository.ErrDeckNotFound)

	got, err := svc.ListDecks(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	deck, err := svc.GetDeck(ctx, "user-1", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", deck.ID)

	_, err = svc.GetDeck(ctx, "user-1", "zzz")
	assert.ErrorIs(t, err, ErrDeckNotFound)
}
