package models

import "time"

// RefCode binds an opaque referral code to its owner. A user may accumulate
// rows if codes are created concurrently, but lookups always return the
// earliest row, so one code per user is the observable behaviour.
type RefCode struct {
	Code          string    `gorm:"primaryKey" json:"code"`
	DiscordUserID string    `gorm:"index;not null" json:"discord_user_id"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}
