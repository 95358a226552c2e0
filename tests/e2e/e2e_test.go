//go:build e2e

package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck/internal/auth"
	"github.com/flashdeck/flashdeck/internal/client"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/repository"
)

// TestE2ESmoke drives a running server end to end: two users, concurrent
// card writes, reviews flowing through the worker into stats, and cascade
// deletes.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("FLASHDECK_API_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	secret := os.Getenv("SESSION_SECRET")
	if dbURL == "" || secret == "" {
		t.Fatalf("DATABASE_URL and SESSION_SECRET are required for e2e tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ada := client.New(baseURL, provisionSession(t, ctx, dbURL, secret, "ada"))
	bob := client.New(baseURL, provisionSession(t, ctx, dbURL, secret, "bob"))

	desc := "e2e"
	deck, err := ada.CreateDeck(ctx, client.DeckInput{Name: "  Biology  ", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Biology", deck.Name)
	assert.Equal(t, 0, deck.CardCount)

	t.Run("ownership", func(t *testing.T) {
		_, err := bob.GetDeck(ctx, deck.ID)
		assert.ErrorIs(t, err, client.ErrNotFound)
		_, err = bob.ListCards(ctx, deck.ID)
		assert.ErrorIs(t, err, client.ErrNotFound)
		assert.ErrorIs(t, bob.DeleteDeck(ctx, deck.ID), client.ErrNotFound)

		decks, err := bob.ListDecks(ctx)
		require.NoError(t, err)
		for _, d := range decks {
			assert.NotEqual(t, deck.ID, d.ID)
		}
	})

	t.Run("card count under concurrency", func(t *testing.T) {
		const n = 20
		ids := make(chan string, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				card, err := ada.CreateCard(ctx, deck.ID, client.CardInput{Front: fmt.Sprintf("Q%d", i), Back: "A"})
				if assert.NoError(t, err) {
					ids <- card.ID
				}
			}(i)
		}
		wg.Wait()
		close(ids)

		var toDelete []string
		for id := range ids {
			if len(toDelete) < n/2 {
				toDelete = append(toDelete, id)
			}
		}
		for _, id := range toDelete {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				assert.NoError(t, ada.DeleteCard(ctx, deck.ID, id))
			}(id)
		}
		wg.Wait()

		got, err := ada.GetDeck(ctx, deck.ID)
		require.NoError(t, err)
		cards, err := ada.ListCards(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, len(cards), got.CardCount)
		assert.Equal(t, n-n/2, got.CardCount)
	})

	t.Run("reviews reach stats", func(t *testing.T) {
		cards, err := ada.ListCards(ctx, deck.ID)
		require.NoError(t, err)
		require.NotEmpty(t, cards)

		reviewed, err := ada.RecordReview(ctx, deck.ID, cards[0].ID, model.DifficultyHard)
		require.NoError(t, err)
		assert.Equal(t, cards[0].ReviewCount+1, reviewed.ReviewCount)
		assert.NotNil(t, reviewed.LastReviewed)

		require.Eventually(t, func() bool {
			stats, err := ada.DeckStats(ctx, deck.ID, "", "")
			return err == nil && stats.ByDifficulty["hard"] >= 1
		}, 30*time.Second, 500*time.Millisecond, "review event never reached deck stats")
	})

	t.Run("cascade delete", func(t *testing.T) {
		require.NoError(t, ada.DeleteDeck(ctx, deck.ID))

		_, err := ada.ListCards(ctx, deck.ID)
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Deck not found", apiErr.Message)
	})
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// provisionSession stands in for the identity provider: it creates the user
// row and signs a session token for it.
func provisionSession(t *testing.T, ctx context.Context, dbURL, secret, name string) string {
	t.Helper()

	repo, err := repository.New(ctx, dbURL)
	require.NoError(t, err, "connect db")
	defer repo.Close()

	email := fmt.Sprintf("%s+%s@flashdeck.e2e", name, ulid.Make().String())
	user, err := repo.GetOrCreateUser(ctx, &model.User{ID: ulid.Make().String(), Email: email})
	require.NoError(t, err, "provision user")

	token, err := auth.NewSessions(secret, os.Getenv("SESSION_ISSUER")).Issue(user.Email, name, time.Hour)
	require.NoError(t, err, "issue session")
	return token
}
