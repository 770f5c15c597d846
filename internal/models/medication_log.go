package models

import "time"

// MedicationLog records the intake decision for one scheduled slot on one date.
// A row with TakenAt == nil and Skipped == false is the cleared state.
type MedicationLog struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;uniqueIndex:uidx_medication_log_slot" json:"user_id"`
	CoupleID      *string    `gorm:"index" json:"couple_id,omitempty"`
	MedicationID  string     `gorm:"not null;uniqueIndex:uidx_medication_log_slot" json:"medication_id"`
	ScheduledTime string     `gorm:"not null;uniqueIndex:uidx_medication_log_slot" json:"scheduled_time"`
	ScheduledDate string     `gorm:"not null;uniqueIndex:uidx_medication_log_slot" json:"scheduled_date"`
	TakenAt       *time.Time `json:"taken_at"`
	Skipped       bool       `gorm:"not null;default:false" json:"skipped"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
