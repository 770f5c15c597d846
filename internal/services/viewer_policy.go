package services

import (
	"time"

	"github.com/terraincognita07/miffy/internal/models"
)

// MoodFeedItem is everything a couple member may see of another member's
// mood entry.
type MoodFeedItem struct {
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score"`
	MoodID    string    `json:"mood_id"`
	Note      string    `json:"note"`
}

func SanitizeMoodForFeed(entry models.MoodEntry) MoodFeedItem {
	return MoodFeedItem{
		CreatedAt: entry.CreatedAt,
		Score:     entry.Score,
		MoodID:    entry.MoodID,
		Note:      entry.Note,
	}
}

func SanitizeMoodsForFeed(entries []models.MoodEntry) []MoodFeedItem {
	items := make([]MoodFeedItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, SanitizeMoodForFeed(entry))
	}
	return items
}
