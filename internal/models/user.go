package models

import "time"

type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName    string     `gorm:"not null;default:''" json:"display_name"`
	LoginNonceHash string     `gorm:"not null;default:''" json:"-"`
	LastSignInAt   *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
}
