package review

import (
	"fmt"

	"github.com/flashdeck/flashdeck/internal/model"
)

const maxIDLength = 64

// ValidatePayload checks that a decoded payload can be persisted.
func ValidatePayload(p Payload) error {
	if p.CardID == "" {
		return fmt.Errorf("cid is required")
	}
	if p.DeckID == "" {
		return fmt.Errorf("did is required")
	}
	if p.UserID == "" {
		return fmt.Errorf("uid is required")
	}
	if len(p.CardID) > maxIDLength || len(p.DeckID) > maxIDLength || len(p.UserID) > maxIDLength {
		return fmt.Errorf("id too long")
	}
	if !model.Difficulty(p.Difficulty).IsValid() {
		return fmt.Errorf("d must be one of easy, medium, hard")
	}
	if p.ReviewedAt <= 0 {
		return fmt.Errorf("t must be set")
	}
	return nil
}
