// Package study holds the client-side state of a study pass over one deck.
package study

import (
	"errors"
	"time"

	"github.com/flashdeck/flashdeck/internal/model"
)

var (
	// ErrNoCards is returned by Start when no deck is selected or the deck is empty.
	ErrNoCards = errors.New("deck has no cards to study")
	// ErrNotStudying is returned by Rate outside a study pass.
	ErrNotStudying = errors.New("not in study mode")
)

// Session tracks the selected deck, the card under review and whether a
// study pass is running. It is not safe for concurrent use; each client
// session owns its own value.
type Session struct {
	deckID   string
	cards    []*model.FlashCard
	index    int
	studying bool
	rated    int

	now func() time.Time
}

// NewSession returns an idle session. A nil clock uses time.Now.
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{now: now}
}

// SelectDeck replaces the card snapshot and leaves study mode.
func (s *Session) SelectDeck(deckID string, cards []*model.FlashCard) {
	s.deckID = deckID
	s.cards = cards
	s.index = 0
	s.studying = false
	s.rated = 0
}

// DeckID returns the selected deck, or "" when none is selected.
func (s *Session) DeckID() string { return s.deckID }

// Studying reports whether a study pass is running.
func (s *Session) Studying() bool { return s.studying }

// Rated returns how many cards were rated since the deck was selected.
func (s *Session) Rated() int { return s.rated }

// Start begins a pass from the first card.
func (s *Session) Start() error {
	if s.deckID == "" || len(s.cards) == 0 {
		return ErrNoCards
	}
	s.index = 0
	s.studying = true
	return nil
}

// Current returns the card under the cursor.
func (s *Session) Current() (*model.FlashCard, bool) {
	if s.index < 0 || s.index >= len(s.cards) {
		return nil, false
	}
	return s.cards[s.index], true
}

// Next moves forward one card and reports whether the cursor moved.
func (s *Session) Next() bool {
	if s.index+1 >= len(s.cards) {
		return false
	}
	s.index++
	return true
}

// Prev moves back one card and reports whether the cursor moved.
func (s *Session) Prev() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Rate applies a rating to the current card and advances. The returned
// card is the local copy to send to the server. done is true when the
// last card was rated, which ends the pass.
func (s *Session) Rate(d model.Difficulty) (card *model.FlashCard, done bool, err error) {
	if !s.studying {
		return nil, false, ErrNotStudying
	}
	if !d.IsValid() {
		return nil, false, model.ErrUnknownDifficulty
	}
	card, ok := s.Current()
	if !ok {
		s.studying = false
		return nil, true, ErrNoCards
	}

	reviewedAt := s.now().UTC()
	card.Difficulty = d
	card.ReviewCount++
	card.LastReviewed = &reviewedAt
	s.rated++

	if !s.Next() {
		s.studying = false
		return card, true, nil
	}
	return card, false, nil
}

// Replace swaps in the server's copy of a card, matched by id.
func (s *Session) Replace(card *model.FlashCard) {
	for i, c := range s.cards {
		if c.ID == card.ID {
			s.cards[i] = card
			return
		}
	}
}

// Stop leaves study mode and keeps the selected deck.
func (s *Session) Stop() {
	s.studying = false
}

// Progress returns the 1-based position and the card total.
func (s *Session) Progress() (position, total int) {
	if len(s.cards) == 0 {
		return 0, 0
	}
	return s.index + 1, len(s.cards)
}
