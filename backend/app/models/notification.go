package models

import "time"

const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationDropped = "dropped"
)

// Notification records the outcome of one best-effort ticket notification.
type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	MessageID string    `gorm:"uniqueIndex;size:36;not null"`
	Event     string    `gorm:"size:32;index"`
	BugID     uint      `gorm:"index"`
	Text      string    `gorm:"type:text"`
	Status    string    `gorm:"size:16;index"`
	LastError string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	SentAt    *time.Time
}
