package models

import "time"

const (
	NoticeVariantDefault     = "default"
	NoticeVariantDestructive = "destructive"
)

// Notice is a fire-and-forget user-facing message.
type Notice struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}
