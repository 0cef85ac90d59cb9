package models

import "time"

// CountedEvent records a webhook event id that has already been applied.
// Insert-only: once a row exists the same event is never credited again.
type CountedEvent struct {
	EventID   string    `gorm:"primaryKey" json:"event_id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
