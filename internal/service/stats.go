package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flashdeck/flashdeck/internal/model"
)

const (
	dateLayout        = "2006-01-02"
	defaultStatsDays  = 7
	maxStatsRangeDays = 90
)

// StatsService reads review statistics for owned decks.
type StatsService struct {
	decks DeckRepository
	stats StatsRepository
	now   func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(decks DeckRepository, stats StatsRepository) *StatsService {
	return &StatsService{
		decks: decks,
		stats: stats,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// DeckStats is the review activity of a deck over a date range.
type DeckStats struct {
	DeckID  string
	From    time.Time
	To      time.Time
	Summary *model.DeckStatsSummary
	Daily   []*model.DailyDeckStats
}

// GetDeckStats returns statistics for an owned deck. from and to are
// YYYY-MM-DD dates; empty values default to the last seven days.
func (s *StatsService) GetDeckStats(ctx context.Context, userID, deckID, from, to string) (*DeckStats, error) {
	start, end, err := s.parseRange(from, to)
	if err != nil {
		return nil, err
	}

	if _, err := s.decks.GetDeck(ctx, deckID, userID); err != nil {
		return nil, mapDeckError(err)
	}

	summary, err := s.stats.GetStatsSummary(ctx, deckID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats summary: %w", err)
	}

	daily, err := s.stats.GetDailyStats(ctx, deckID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return &DeckStats{
		DeckID:  deckID,
		From:    start,
		To:      end,
		Summary: summary,
		Daily:   daily,
	}, nil
}

// parseRange resolves the requested window. Malformed dates and
// from > to are rejected; spans over the maximum are clamped from the end.
func (s *StatsService) parseRange(from, to string) (time.Time, time.Time, error) {
	today := truncateDay(s.now())

	end := today
	if v := strings.TrimSpace(to); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidRange
		}
		end = parsed
	}
	if end.After(today) {
		end = today
	}

	start := end.AddDate(0, 0, -(defaultStatsDays - 1))
	if v := strings.TrimSpace(from); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidRange
		}
		start = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}

	earliest := end.AddDate(0, 0, -(maxStatsRangeDays - 1))
	if start.Before(earliest) {
		start = earliest
	}

	return start, end, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
