package models

import "time"

type SleepEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uidx_sleep_user_date" json:"user_id"`
	CoupleID  *string   `gorm:"index" json:"couple_id,omitempty"`
	Date      string    `gorm:"not null;uniqueIndex:uidx_sleep_user_date" json:"date"`
	Bedtime   string    `gorm:"not null" json:"bedtime"`
	WakeTime  string    `gorm:"not null" json:"wake_time"`
	Quality   int       `gorm:"not null" json:"quality"`
	Duration  float64   `gorm:"not null" json:"duration"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
