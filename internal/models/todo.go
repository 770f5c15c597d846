package models

import "time"

const (
	TodoCategoryWellness = "wellness"
	TodoCategoryDaily    = "daily"
	TodoCategorySocial   = "social"
	TodoCategoryWork     = "work"
	TodoCategoryOther    = "other"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type TodoItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	CoupleID    *string    `gorm:"index" json:"couple_id,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Category    string     `gorm:"not null;default:daily" json:"category"`
	Priority    string     `gorm:"not null;default:medium" json:"priority"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	DueDate     string     `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (TodoItem) TableName() string {
	return "todos"
}
