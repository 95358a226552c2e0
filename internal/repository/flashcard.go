package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flashdeck/flashdeck/internal/model"
)

// ErrCardNotFound is returned when a card does not exist, sits in another deck,
// or belongs to a deck owned by someone else.
var ErrCardNotFound = errors.New("card not found")

const cardColumns = `c.id, c.front, c.back, c.difficulty, c.review_count, c.last_reviewed, c.deck_id, c.created_at, c.updated_at`

// ListCards returns the cards of an owned deck, newest first.
// A deck owned by someone else yields ErrDeckNotFound rather than an empty list.
func (r *Repository) ListCards(ctx context.Context, deckID, userID string) ([]*model.FlashCard, error) {
	exists, err := r.DeckExists(ctx, deckID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDeckNotFound
	}

	query := `
		SELECT ` + cardColumns + `
		FROM flash_cards c
		WHERE c.deck_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.pool.Query(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := make([]*model.FlashCard, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// CreateCard inserts a card and increments the parent deck's card_count
// in one transaction. Timestamps are filled in from the database clock.
//
// The relative UPDATE on the deck row runs first: it doubles as the
// ownership check and holds the row lock that serializes concurrent
// writers on the same deck until commit.
func (r *Repository) CreateCard(ctx context.Context, userID string, card *model.FlashCard) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE decks
			SET card_count = card_count + 1, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
		`, card.DeckID, userID)
		if err != nil {
			return fmt.Errorf("failed to increment card count: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrDeckNotFound
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO flash_cards (id, front, back, difficulty, review_count, last_reviewed, deck_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING created_at, updated_at
		`,
			card.ID,
			card.Front,
			card.Back,
			string(card.Difficulty),
			card.ReviewCount,
			card.LastReviewed,
			card.DeckID,
		).Scan(&card.CreatedAt, &card.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create card: %w", err)
		}

		return nil
	})
}

// UpdateCard overwrites front and back of a card. An empty Difficulty keeps
// the stored one. Card id, deck id and deck owner must all match in a single
// statement. Review fields are left untouched.
func (r *Repository) UpdateCard(ctx context.Context, userID string, card *model.FlashCard) (*model.FlashCard, error) {
	query := `
		UPDATE flash_cards c
		SET front = $4, back = $5, difficulty = COALESCE(NULLIF($6::text, ''), c.difficulty), updated_at = NOW()
		FROM decks d
		WHERE c.id = $1 AND c.deck_id = $2 AND d.id = c.deck_id AND d.user_id = $3
		RETURNING ` + cardColumns

	updated, err := scanCard(r.pool.QueryRow(ctx, query,
		card.ID,
		card.DeckID,
		userID,
		card.Front,
		card.Back,
		string(card.Difficulty),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	return updated, nil
}

// RecordReview stores a study rating: difficulty is overwritten,
// review_count grows by exactly one and last_reviewed is stamped by the database.
func (r *Repository) RecordReview(ctx context.Context, cardID, deckID, userID string, difficulty model.Difficulty) (*model.FlashCard, error) {
	query := `
		UPDATE flash_cards c
		SET difficulty = $4,
		    review_count = c.review_count + 1,
		    last_reviewed = NOW(),
		    updated_at = NOW()
		FROM decks d
		WHERE c.id = $1 AND c.deck_id = $2 AND d.id = c.deck_id AND d.user_id = $3
		RETURNING ` + cardColumns

	updated, err := scanCard(r.pool.QueryRow(ctx, query, cardID, deckID, userID, string(difficulty)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to record review: %w", err)
	}

	return updated, nil
}

// DeleteCard removes a card and decrements the parent deck's card_count
// in one transaction.
//
// The deck row is locked before the card, the same order CreateCard and
// DeleteDeck take, so concurrent writers on one deck cannot deadlock.
func (r *Repository) DeleteCard(ctx context.Context, cardID, deckID, userID string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var locked string
		err := tx.QueryRow(ctx, `
			SELECT id FROM decks
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`, deckID, userID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCardNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock deck: %w", err)
		}

		result, err := tx.Exec(ctx, `
			DELETE FROM flash_cards
			WHERE id = $1 AND deck_id = $2
		`, cardID, deckID)
		if err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrCardNotFound
		}

		_, err = tx.Exec(ctx, `
			UPDATE decks
			SET card_count = card_count - 1, updated_at = NOW()
			WHERE id = $1 AND card_count > 0
		`, deckID)
		if err != nil {
			return fmt.Errorf("failed to decrement card count: %w", err)
		}

		return nil
	})
}

// CountCards returns the live number of cards referencing the deck.
func (r *Repository) CountCards(ctx context.Context, deckID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM flash_cards WHERE deck_id = $1`, deckID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

func scanCard(row pgx.Row) (*model.FlashCard, error) {
	var (
		card       model.FlashCard
		difficulty string
	)
	err := row.Scan(
		&card.ID,
		&card.Front,
		&card.Back,
		&difficulty,
		&card.ReviewCount,
		&card.LastReviewed,
		&card.DeckID,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	card.Difficulty = model.Difficulty(difficulty)
	return &card, nil
}
