package model

import "time"

// Deck is a named collection of flash cards owned by a single user.
//
// CardCount is denormalized: it always equals the number of cards that
// reference the deck and is maintained by the repository inside the same
// transaction as every card insert or delete.
type Deck struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CardCount   int       `json:"cardCount"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
