package models

import "time"

const (
	EventTypeAppointment = "appointment"
	EventTypeTherapy     = "therapy"
	EventTypeSocial      = "social"
	EventTypeSelfCare    = "self-care"
	EventTypeOther       = "other"
)

type CalendarEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	CoupleID    *string    `gorm:"index" json:"couple_id,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	StartTime   time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Location    string     `json:"location"`
	EventType   string     `gorm:"not null;default:other" json:"event_type"`
	IsAllDay    bool       `gorm:"not null;default:false" json:"is_all_day"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
