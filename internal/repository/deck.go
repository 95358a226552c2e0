package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flashdeck/flashdeck/internal/model"
)

// ErrDeckNotFound is returned when a deck does not exist or belongs to another user.
// The two cases are deliberately indistinguishable.
var ErrDeckNotFound = errors.New("deck not found")

const deckColumns = `id, name, description, card_count, user_id, created_at, updated_at`

// ListDecksByUser returns every deck owned by the user, most recently updated first.
func (r *Repository) ListDecksByUser(ctx context.Context, userID string) ([]*model.Deck, error) {
	query := `
		SELECT ` + deckColumns + `
		FROM decks
		WHERE user_id = $1
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := make([]*model.Deck, 0)
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}

	return decks, nil
}

// GetDeck retrieves a deck by ID scoped to its owner.
func (r *Repository) GetDeck(ctx context.Context, id, userID string) (*model.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = $1 AND user_id = $2`

	deck, err := scanDeck(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	return deck, nil
}

// DeckExists reports whether the deck exists and is owned by the user.
func (r *Repository) DeckExists(ctx context.Context, id, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM decks WHERE id = $1 AND user_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check deck existence: %w", err)
	}

	return exists, nil
}

// CreateDeck inserts a new deck. Timestamps come from the database clock,
// the same one every later card write uses to bump updated_at.
func (r *Repository) CreateDeck(ctx context.Context, deck *model.Deck) error {
	query := `
		INSERT INTO decks (id, name, description, card_count, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, NOW(), NOW())
		RETURNING card_count, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		deck.ID,
		deck.Name,
		deck.Description,
		deck.UserID,
	).Scan(&deck.CardCount, &deck.CreatedAt, &deck.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	return nil
}

// UpdateDeck overwrites the name and description of an owned deck
// and returns the stored row.
func (r *Repository) UpdateDeck(ctx context.Context, id, userID, name string, description *string) (*model.Deck, error) {
	query := `
		UPDATE decks
		SET name = $3, description = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + deckColumns

	deck, err := scanDeck(r.pool.QueryRow(ctx, query, id, userID, name, description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to update deck: %w", err)
	}

	return deck, nil
}

// DeleteDeck removes an owned deck. Its cards and review history go with it
// through ON DELETE CASCADE in the same statement.
func (r *Repository) DeleteDeck(ctx context.Context, id, userID string) error {
	query := `DELETE FROM decks WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrDeckNotFound
	}

	return nil
}

func scanDeck(row pgx.Row) (*model.Deck, error) {
	var deck model.Deck
	err := row.Scan(
		&deck.ID,
		&deck.Name,
		&deck.Description,
		&deck.CardCount,
		&deck.UserID,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &deck, nil
}
