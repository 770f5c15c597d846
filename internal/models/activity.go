package models

import "time"

const (
	ActivityTypeMovie = "movie"
	ActivityTypeGame  = "game"
	ActivityTypeDate  = "date"
	ActivityTypeOther = "other"
)

const (
	ActivityStatusWishlist  = "wishlist"
	ActivityStatusPlanned   = "planned"
	ActivityStatusCompleted = "completed"
)

// Activity is a shared wishlist item owned by a couple rather than a single user.
type Activity struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CoupleID    string     `gorm:"not null;index" json:"couple_id"`
	AddedBy     uint       `gorm:"not null" json:"added_by"`
	Title       string     `gorm:"not null" json:"title"`
	Type        string     `gorm:"not null;default:other" json:"type"`
	Description string     `json:"description"`
	Priority    string     `gorm:"not null;default:medium" json:"priority"`
	Status      string     `gorm:"not null;default:wishlist" json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
