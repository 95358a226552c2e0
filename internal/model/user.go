// Package model defines domain entities for the application.
package model

import "time"

// User is the identity anchor that owns decks.
// Records are created by the identity provider on first sign-in.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
