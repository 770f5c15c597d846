package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyAsNeeded = "as_needed"
)

const DefaultMedicationColor = "bg-pink-400"

type Medication struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CoupleID  *string   `gorm:"index" json:"couple_id,omitempty"`
	Name      string    `gorm:"not null" json:"name"`
	Dosage    string    `gorm:"not null" json:"dosage"`
	Frequency string    `gorm:"not null;default:daily" json:"frequency"`
	Times     []string  `gorm:"serializer:json;not null" json:"times"`
	Color     string    `gorm:"not null" json:"color"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the identifier at insert time, so a medication only
// gains an ID once the row is written.
func (medication *Medication) BeforeCreate(tx *gorm.DB) error {
	if medication.ID == "" {
		medication.ID = uuid.NewString()
	}
	return nil
}

func MedicationColors() []string {
	return []string{
		"bg-pink-400",
		"bg-blue-400",
		"bg-green-400",
		"bg-purple-400",
		"bg-orange-400",
		"bg-yellow-400",
	}
}

func IsMedicationColor(value string) bool {
	for _, color := range MedicationColors() {
		if color == value {
			return true
		}
	}
	return false
}
