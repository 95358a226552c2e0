package dto

import "github.com/flashdeck/flashdeck/internal/service"

// CardRequest is the body of card create and update.
type CardRequest struct {
	Front      string `json:"front" validate:"max=10000"`
	Back       string `json:"back" validate:"max=10000"`
	Difficulty string `json:"difficulty" validate:"max=16"`
}

// ToInput converts the request into service input.
func (r CardRequest) ToInput() service.CardInput {
	return service.CardInput{Front: r.Front, Back: r.Back, Difficulty: r.Difficulty}
}

// ReviewRequest is the body of POST .../cards/{cardId}/review.
type ReviewRequest struct {
	Difficulty string `json:"difficulty" validate:"max=16"`
}
