package dto

import "github.com/flashdeck/flashdeck/internal/service"

// DeckRequest is the body of POST /decks and PUT /decks/{id}.
// Emptiness is checked after trimming by the service.
type DeckRequest struct {
	Name        string  `json:"name" validate:"max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ToInput converts the request into service input.
func (r DeckRequest) ToInput() service.DeckInput {
	return service.DeckInput{Name: r.Name, Description: r.Description}
}
