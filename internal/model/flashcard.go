package model

import (
	"errors"
	"strings"
	"time"
)

// Difficulty is the study rating attached to a card.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultDifficulty is assigned when a request omits the field.
const DefaultDifficulty = DifficultyMedium

// ErrUnknownDifficulty is returned by ParseDifficulty for values outside the enum.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ValidDifficulties lists every accepted difficulty in display order.
var ValidDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty converts raw input into a Difficulty.
// An empty string yields DefaultDifficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return DefaultDifficulty, nil
	}
	d := Difficulty(value)
	if !d.IsValid() {
		return "", ErrUnknownDifficulty
	}
	return d, nil
}

// IsValid checks if the difficulty is one of the known values.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// FlashCard is a single question/answer pair within a deck.
type FlashCard struct {
	ID           string     `json:"id"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	Difficulty   Difficulty `json:"difficulty"`
	ReviewCount  int        `json:"reviewCount"`
	LastReviewed *time.Time `json:"lastReviewed"`
	DeckID       string     `json:"deckId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
