package model

import "time"

// ReviewEvent records a single study-session rating.
type ReviewEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	CardID     string     `json:"card_id"`
	DeckID     string     `json:"deck_id"`
	UserID     string     `json:"user_id"`
	Difficulty Difficulty `json:"difficulty"`

	ReviewedAt time.Time `json:"reviewed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyDeckStats is the per-day review aggregate for a deck.
type DailyDeckStats struct {
	DeckID       string    `json:"deck_id"`
	Date         time.Time `json:"date"` // UTC date (time component zeroed)
	TotalReviews int64     `json:"total_reviews"`
	EasyCount    int64     `json:"easy_count"`
	MediumCount  int64     `json:"medium_count"`
	HardCount    int64     `json:"hard_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeckStatsSummary aggregates review activity over a date range.
type DeckStatsSummary struct {
	TotalReviews int64
	ByDifficulty map[Difficulty]int64
	// CardsByDifficulty is the current difficulty distribution of the deck's cards.
	CardsByDifficulty map[Difficulty]int64
}
