package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the referral ledger row for a single Discord user.
// Created implicitly on first reference; never deleted in normal operation.
type User struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	DiscordUserID string `gorm:"uniqueIndex;not null" json:"discord_user_id"`

	Referrals int  `json:"referrals" gorm:"default:0"`
	Rewarded  bool `json:"rewarded" gorm:"default:false"` // flips false→true exactly once

	// Snapshot cache refreshed by the member sync worker; display only.
	Username *string `json:"username,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
