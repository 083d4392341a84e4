package model

import "time"

type PaperAction string

const (
	PaperActionCreated PaperAction = "created"
	PaperActionUpdated PaperAction = "updated"
	PaperActionDeleted PaperAction = "deleted"
)

// PaperEvent is published after a successful catalog mutation.
type PaperEvent struct {
	PaperID    string      `json:"paper_id"`
	Action     PaperAction `json:"action"`
	Actor      string      `json:"actor"`
	Title      string      `json:"title"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type PaperAuditEntry struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	PaperID    string      `gorm:"size:36;not null;index" json:"paper_id"`
	Action     PaperAction `gorm:"size:16;not null" json:"action"`
	Actor      string      `gorm:"size:255;not null" json:"actor"`
	Title      string      `gorm:"size:256" json:"title"`
	OccurredAt time.Time   `gorm:"not null;index" json:"occurred_at"`
	CreatedAt  time.Time   `json:"created_at"`
}
