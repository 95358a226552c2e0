package dto

import (
	"time"

	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/service"
)

const dateLayout = "2006-01-02"

// DeckStatsResponse is the body of GET /decks/{id}/stats.
type DeckStatsResponse struct {
	DeckID            string           `json:"deckId"`
	Period            Period           `json:"period"`
	TotalReviews      int64            `json:"totalReviews"`
	ByDifficulty      map[string]int64 `json:"byDifficulty"`
	CardsByDifficulty map[string]int64 `json:"cardsByDifficulty"`
	Daily             []DailyStat      `json:"daily"`
	GeneratedAt       time.Time        `json:"generatedAt"`
}

// Period is an inclusive date range.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DailyStat is one day of review activity.
type DailyStat struct {
	Date         string `json:"date"`
	TotalReviews int64  `json:"totalReviews"`
	Easy         int64  `json:"easy"`
	Medium       int64  `json:"medium"`
	Hard         int64  `json:"hard"`
}

// ToDeckStatsResponse converts service stats into the API shape.
func ToDeckStatsResponse(stats *service.DeckStats) *DeckStatsResponse {
	resp := &DeckStatsResponse{
		DeckID: stats.DeckID,
		Period: Period{
			From: stats.From.Format(dateLayout),
			To:   stats.To.Format(dateLayout),
		},
		ByDifficulty:      difficultyCounts(nil),
		CardsByDifficulty: difficultyCounts(nil),
		Daily:             make([]DailyStat, 0, len(stats.Daily)),
		GeneratedAt:       time.Now().UTC(),
	}

	if stats.Summary != nil {
		resp.TotalReviews = stats.Summary.TotalReviews
		resp.ByDifficulty = difficultyCounts(stats.Summary.ByDifficulty)
		resp.CardsByDifficulty = difficultyCounts(stats.Summary.CardsByDifficulty)
	}

	for _, day := range stats.Daily {
		resp.Daily = append(resp.Daily, DailyStat{
			Date:         day.Date.Format(dateLayout),
			TotalReviews: day.TotalReviews,
			Easy:         day.EasyCount,
			Medium:       day.MediumCount,
			Hard:         day.HardCount,
		})
	}

	return resp
}

// difficultyCounts always reports all three difficulties.
func difficultyCounts(src map[model.Difficulty]int64) map[string]int64 {
	out := make(map[string]int64, len(model.ValidDifficulties))
	for _, d := range model.ValidDifficulties {
		out[string(d)] = src[d]
	}
	return out
}
