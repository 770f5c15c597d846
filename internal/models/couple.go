package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CoupleRoleOwner    = "owner"
	CoupleRoleGuardian = "guardian"
)

// Couple groups two accounts so that a guardian can follow the owner's records.
type Couple struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedBy uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (couple *Couple) BeforeCreate(tx *gorm.DB) error {
	if couple.ID == "" {
		couple.ID = uuid.NewString()
	}
	return nil
}

type CoupleMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CoupleID  string    `gorm:"not null;uniqueIndex:uidx_couple_member" json:"couple_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uidx_couple_member" json:"user_id"`
	Role      string    `gorm:"not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
