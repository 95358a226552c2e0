package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/flashdeck/flashdeck/internal/model"
)

// ReviewEventRepository provides database access for review history.
type ReviewEventRepository struct {
	repo *Repository
}

// NewReviewEventRepository creates a new ReviewEventRepository.
func NewReviewEventRepository(repo *Repository) *ReviewEventRepository {
	return &ReviewEventRepository{repo: repo}
}

// BulkInsert inserts review events; replays are ignored via ON CONFLICT (event_id).
// Events whose deck was deleted in the meantime are skipped by the WHERE EXISTS guard.
func (r *ReviewEventRepository) BulkInsert(ctx context.Context, events []*model.ReviewEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO review_events (
			id, event_id, card_id, deck_id, user_id, difficulty, reviewed_at, created_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, NOW()
		WHERE EXISTS (SELECT 1 FROM decks WHERE id = $4)
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			event.CardID,
			event.DeckID,
			event.UserID,
			string(event.Difficulty),
			event.ReviewedAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert review event %d: %w", i, err)
		}
	}

	return nil
}

// UpdateDailyStats recomputes daily_deck_stats for every deck/day touched by events.
func (r *ReviewEventRepository) UpdateDailyStats(ctx context.Context, events []*model.ReviewEvent) error {
	if len(events) == 0 {
		return nil
	}

	for _, key := range uniqueDailyKeys(events) {
		acc, err := r.recalculateDailyStat(ctx, key.deckID, key.date)
		if err != nil {
			return fmt.Errorf("recalculate daily stat %s:%s: %w", key.deckID, key.date.Format("2006-01-02"), err)
		}
		if acc.total == 0 {
			// deck deleted before the batch landed
			continue
		}
		if err := r.upsertDailyStat(ctx, acc); err != nil {
			return fmt.Errorf("upsert daily stat %s:%s: %w", key.deckID, key.date.Format("2006-01-02"), err)
		}
	}

	return nil
}

type dailyStatsAccumulator struct {
	deckID string
	date   time.Time
	total  int64
	counts map[model.Difficulty]int64
}

type dailyStatsKey struct {
	deckID string
	date   time.Time
}

func uniqueDailyKeys(events []*model.ReviewEvent) []dailyStatsKey {
	seen := make(map[string]dailyStatsKey)
	for _, event := range events {
		day := event.ReviewedAt.UTC().Truncate(24 * time.Hour)
		key := fmt.Sprintf("%s:%s", event.DeckID, day.Format("2006-01-02"))
		seen[key] = dailyStatsKey{deckID: event.DeckID, date: day}
	}

	keys := make([]dailyStatsKey, 0, len(seen))
	for _, key := range seen {
		keys = append(keys, key)
	}
	return keys
}

func (r *ReviewEventRepository) recalculateDailyStat(ctx context.Context, deckID string, date time.Time) (*dailyStatsAccumulator, error) {
	start := date.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	query := `
		SELECT difficulty
		FROM review_events
		WHERE deck_id = $1 AND reviewed_at >= $2 AND reviewed_at < $3
	`

	rows, err := r.repo.pool.Query(ctx, query, deckID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query review events: %w", err)
	}
	defer rows.Close()

	ratings := make([]model.Difficulty, 0)
	for rows.Next() {
		var difficulty string
		if err := rows.Scan(&difficulty); err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		ratings = append(ratings, model.Difficulty(difficulty))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review events: %w", err)
	}

	acc := accumulateDailyStats(ratings)
	acc.deckID = deckID
	acc.date = start
	return acc, nil
}

func accumulateDailyStats(ratings []model.Difficulty) *dailyStatsAccumulator {
	acc := &dailyStatsAccumulator{counts: make(map[model.Difficulty]int64)}
	for _, rating := range ratings {
		acc.total++
		acc.counts[rating]++
	}
	return acc
}

func (r *ReviewEventRepository) upsertDailyStat(ctx context.Context, acc *dailyStatsAccumulator) error {
	query := `
		INSERT INTO daily_deck_stats (
			deck_id, date, total_reviews, easy_count, medium_count, hard_count, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (deck_id, date) DO UPDATE SET
			total_reviews = EXCLUDED.total_reviews,
			easy_count = EXCLUDED.easy_count,
			medium_count = EXCLUDED.medium_count,
			hard_count = EXCLUDED.hard_count,
			updated_at = NOW()
	`

	_, err := r.repo.pool.Exec(ctx, query,
		acc.deckID,
		acc.date,
		acc.total,
		acc.counts[model.DifficultyEasy],
		acc.counts[model.DifficultyMedium],
		acc.counts[model.DifficultyHard],
	)
	return err
}

// GetDailyStats retrieves daily stats for a deck within a date range, newest first.
func (r *ReviewEventRepository) GetDailyStats(ctx context.Context, deckID string, from, to time.Time) ([]*model.DailyDeckStats, error) {
	query := `
		SELECT deck_id, date, total_reviews, easy_count, medium_count, hard_count, updated_at
		FROM daily_deck_stats
		WHERE deck_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`

	rows, err := r.repo.pool.Query(ctx, query, deckID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	stats := make([]*model.DailyDeckStats, 0)
	for rows.Next() {
		var stat model.DailyDeckStats
		if err := rows.Scan(
			&stat.DeckID,
			&stat.Date,
			&stat.TotalReviews,
			&stat.EasyCount,
			&stat.MediumCount,
			&stat.HardCount,
			&stat.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		stats = append(stats, &stat)
	}

	return stats, rows.Err()
}

// GetStatsSummary aggregates review activity over a date range together with
// the deck's current card difficulty distribution.
func (r *ReviewEventRepository) GetStatsSummary(ctx context.Context, deckID string, from, to time.Time) (*model.DeckStatsSummary, error) {
	summary := &model.DeckStatsSummary{
		ByDifficulty:      make(map[model.Difficulty]int64),
		CardsByDifficulty: make(map[model.Difficulty]int64),
	}

	var easy, medium, hard int64
	err := r.repo.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_reviews), 0),
			COALESCE(SUM(easy_count), 0),
			COALESCE(SUM(medium_count), 0),
			COALESCE(SUM(hard_count), 0)
		FROM daily_deck_stats
		WHERE deck_id = $1 AND date >= $2 AND date <= $3
	`, deckID, from, to).Scan(&summary.TotalReviews, &easy, &medium, &hard)
	if err != nil {
		return nil, fmt.Errorf("query stats summary: %w", err)
	}
	summary.ByDifficulty[model.DifficultyEasy] = easy
	summary.ByDifficulty[model.DifficultyMedium] = medium
	summary.ByDifficulty[model.DifficultyHard] = hard

	rows, err := r.repo.pool.Query(ctx, `
		SELECT difficulty, COUNT(*)
		FROM flash_cards
		WHERE deck_id = $1
		GROUP BY difficulty
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("query card distribution: %w", err)
	}
	defer rows.Close()

	for _, d := range model.ValidDifficulties {
		summary.CardsByDifficulty[d] = 0
	}
	for rows.Next() {
		var (
			difficulty string
			count      int64
		)
		if err := rows.Scan(&difficulty, &count); err != nil {
			return nil, fmt.Errorf("scan card distribution: %w", err)
		}
		summary.CardsByDifficulty[model.Difficulty(difficulty)] = count
	}

	return summary, rows.Err()
}
