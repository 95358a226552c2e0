package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck/internal/model"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newDeck(n int) []*model.FlashCard {
	cards := make([]*model.FlashCard, n)
	for i := range cards {
		cards[i] = &model.FlashCard{
			ID:         string(rune('a' + i)),
			Front:      "front",
			Back:       "back",
			Difficulty: model.DifficultyMedium,
		}
	}
	return cards
}

func newSession() *Session {
	return NewSession(func() time.Time { return fixedNow })
}

func TestSession_StartRequiresCards(t *testing.T) {
	s := newSession()
	assert.ErrorIs(t, s.Start(), ErrNoCards)

	s.SelectDeck("deck-1", nil)
	assert.ErrorIs(t, s.Start(), ErrNoCards)
	assert.False(t, s.Studying())

	_, ok := s.Current()
	assert.False(t, ok)
	pos, total := s.Progress()
	assert.Equal(t, 0, pos)
	assert.Equal(t, 0, total)
}

func TestSession_NavigationIsBounded(t *testing.T) {
	s := newSession()
	s.SelectDeck("deck-1", newDeck(3))
	require.NoError(t, s.Start())

	assert.False(t, s.Prev())
	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.False(t, s.Next())

	pos, total := s.Progress()
	assert.Equal(t, 3, pos)
	assert.Equal(t, 3, total)

	card, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "c", card.ID)

	assert.True(t, s.Prev())
	pos, _ = s.Progress()
	assert.Equal(t, 2, pos)
}

func TestSession_RateAdvancesAndFinishes(t *testing.T) {
	s := newSession()
	s.SelectDeck("deck-1", newDeck(2))

	_, _, err := s.Rate(model.DifficultyEasy)
	assert.ErrorIs(t, err, ErrNotStudying)

	require.NoError(t, s.Start())

	card, done, err := s.Rate(model.DifficultyEasy)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "a", card.ID)
	assert.Equal(t, model.DifficultyEasy, card.Difficulty)
	assert.Equal(t, 1, card.ReviewCount)
	require.NotNil(t, card.LastReviewed)
	assert.Equal(t, fixedNow, *card.LastReviewed)

	card, done, err = s.Rate(model.DifficultyHard)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "b", card.ID)
	assert.False(t, s.Studying())
	assert.Equal(t, 2, s.Rated())

	_, _, err = s.Rate(model.DifficultyHard)
	assert.ErrorIs(t, err, ErrNotStudying)
}

func TestSession_RateRejectsUnknownDifficulty(t *testing.T) {
	s := newSession()
	s.SelectDeck("deck-1", newDeck(1))
	require.NoError(t, s.Start())

	_, _, err := s.Rate(model.Difficulty("trivial"))
	assert.ErrorIs(t, err, model.ErrUnknownDifficulty)
	assert.True(t, s.Studying())
}

func TestSession_StopAndReselect(t *testing.T) {
	s := newSession()
	s.SelectDeck("deck-1", newDeck(3))
	require.NoError(t, s.Start())
	s.Next()

	s.Stop()
	assert.False(t, s.Studying())
	assert.Equal(t, "deck-1", s.DeckID())
	pos, _ := s.Progress()
	assert.Equal(t, 2, pos)

	s.SelectDeck("deck-2", newDeck(1))
	pos, total := s.Progress()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1, total)
	assert.Equal(t, 0, s.Rated())
}

func TestSession_Replace(t *testing.T) {
	s := newSession()
	s.SelectDeck("deck-1", newDeck(2))

	s.Replace(&model.FlashCard{ID: "b", Front: "server"})
	require.True(t, s.Next())
	card, _ := s.Current()
	assert.Equal(t, "server", card.Front)
}
