package models

import "time"

type MoodEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CoupleID  *string   `gorm:"index" json:"couple_id,omitempty"`
	MoodID    string    `gorm:"not null" json:"mood_id"`
	Score     int       `gorm:"not null" json:"score"`
	Note      string    `json:"note"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type MoodOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Score       int    `json:"score"`
}

func DefaultMoodOptions() []MoodOption {
	return []MoodOption{
		{ID: "sunny", Name: "Sunny & Bright", Icon: "☀️", Description: "Feeling wonderful and energetic", Score: 5},
		{ID: "partly-cloudy", Name: "Partly Cloudy", Icon: "⛅", Description: "Good with some mixed feelings", Score: 4},
		{ID: "cloudy", Name: "Cloudy", Icon: "☁️", Description: "Feeling okay, a bit neutral", Score: 3},
		{ID: "rainy", Name: "Rainy", Icon: "🌧️", Description: "Feeling down or sad", Score: 2},
		{ID: "stormy", Name: "Stormy", Icon: "⛈️", Description: "Struggling or very difficult", Score: 1},
		{ID: "rainbow", Name: "Rainbow", Icon: "🌈", Description: "Mixed but hopeful", Score: 4},
		{ID: "starry", Name: "Starry Night", Icon: "🌌", Description: "Peaceful and reflective", Score: 3},
	}
}

func FindMoodOption(id string) (MoodOption, bool) {
	for _, option := range DefaultMoodOptions() {
		if option.ID == id {
			return option, true
		}
	}
	return MoodOption{}, false
}
