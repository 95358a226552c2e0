//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/testutil"
)

func newTestRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	repo, err := New(ctx, testutil.DatabaseURL(t))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

func mustCreateUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateDeck(t *testing.T, ctx context.Context, repo *Repository, userID, name string) *model.Deck {
	t.Helper()
	deck := testutil.NewTestDeck(t, userID, name)
	if err := repo.CreateDeck(ctx, deck); err != nil {
		t.Fatalf("create deck: %v", err)
	}
	return deck
}

func mustCreateCard(t *testing.T, ctx context.Context, repo *Repository, userID, deckID string) *model.FlashCard {
	t.Helper()
	card := testutil.NewTestCard(t, deckID, "front", "back")
	if err := repo.CreateCard(ctx, userID, card); err != nil {
		t.Fatalf("create card: %v", err)
	}
	return card
}

func assertCardCount(t *testing.T, ctx context.Context, repo *Repository, deckID, userID string) int {
	t.Helper()
	deck, err := repo.GetDeck(ctx, deckID, userID)
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	live, err := repo.CountCards(ctx, deckID)
	if err != nil {
		t.Fatalf("count cards: %v", err)
	}
	if deck.CardCount != live {
		t.Fatalf("card_count %d does not match live count %d", deck.CardCount, live)
	}
	return live
}
