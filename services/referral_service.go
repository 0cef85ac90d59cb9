// services/referral_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"referral-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxRefCodeLen bounds generated codes; the discord id prefix keeps them
// attributable even when truncated.
const maxRefCodeLen = 48

// codeInsertAttempts bounds the collision retry loop on code creation.
const codeInsertAttempts = 3

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// EnsureUser creates the user row if absent. Safe under concurrent calls for
// the same id: the unique index plus ON CONFLICT DO NOTHING make it a no-op
// on the second writer.
func (s *ReferralService) EnsureUser(discordID string) error {
	user := models.User{
		ID:            uuid.NewString(),
		DiscordUserID: discordID,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_user_id"}},
		DoNothing: true,
	}).Create(&user).Error
}

// GetUser returns the user's row, creating it first if needed.
func (s *ReferralService) GetUser(discordID string) (*models.User, error) {
	if err := s.EnsureUser(discordID); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.DB.Where("discord_user_id = ?", discordID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddReferral increments the referral count by exactly 1 and returns the
// updated row. A cold user lands at count 1.
func (s *ReferralService) AddReferral(discordID string) (*models.User, error) {
	return s.addReferrals(discordID, 1)
}

// ManualAddReferral is the admin-facing increment; count must be positive.
func (s *ReferralService) ManualAddReferral(discordID string, count int) (*models.User, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid count: %d", count)
	}
	return s.addReferrals(discordID, count)
}

func (s *ReferralService) addReferrals(discordID string, count int) (*models.User, error) {
	if err := s.EnsureUser(discordID); err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).
		Where("discord_user_id = ?", discordID).
		UpdateColumn("referrals", gorm.Expr("referrals + ?", count)).Error; err != nil {
		return nil, err
	}
	return s.GetUser(discordID)
}

// SetReferrals sets both fields to absolute values (admin testing only).
func (s *ReferralService) SetReferrals(discordID string, referrals int, rewarded bool) (*models.User, error) {
	if referrals < 0 {
		return nil, fmt.Errorf("invalid referrals: %d", referrals)
	}
	if err := s.EnsureUser(discordID); err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).
		Where("discord_user_id = ?", discordID).
		Updates(map[string]interface{}{
			"referrals": referrals,
			"rewarded":  rewarded,
		}).Error; err != nil {
		return nil, err
	}
	return s.GetUser(discordID)
}

// MarkRewarded flips the rewarded flag. Idempotent set; the caller guarantees
// single invocation via its threshold check.
func (s *ReferralService) MarkRewarded(discordID string) error {
	if err := s.EnsureUser(discordID); err != nil {
		return err
	}
	return s.DB.Model(&models.User{}).
		Where("discord_user_id = ?", discordID).
		Update("rewarded", true).Error
}

// SetUsername refreshes the cached display-name snapshot.
func (s *ReferralService) SetUsername(discordID, username string) error {
	return s.DB.Model(&models.User{}).
		Where("discord_user_id = ?", discordID).
		Update("username", username).Error
}

// GetOrCreateRefCode returns the user's earliest persisted code, generating
// one when none exists. The code is the discord id plus a short random
// suffix, truncated to maxRefCodeLen.
func (s *ReferralService) GetOrCreateRefCode(discordID string) (string, error) {
	if err := s.EnsureUser(discordID); err != nil {
		return "", err
	}

	var existing models.RefCode
	err := s.DB.Where("discord_user_id = ?", discordID).
		Order("created_at ASC").
		First(&existing).Error
	if err == nil {
		return existing.Code, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < codeInsertAttempts; attempt++ {
		code := discordID + "-" + randomCodeSuffix()
		if len(code) > maxRefCodeLen {
			code = code[:maxRefCodeLen]
		}

		res := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&models.RefCode{Code: code, DiscordUserID: discordID})
		if res.Error != nil {
			lastErr = res.Error
			continue
		}
		if res.RowsAffected == 0 {
			// Code collision. Another user may own it, or a concurrent call
			// for this user won the insert; re-read before retrying.
			var raced models.RefCode
			if err := s.DB.Where("discord_user_id = ?", discordID).
				Order("created_at ASC").
				First(&raced).Error; err == nil {
				return raced.Code, nil
			}
			lastErr = fmt.Errorf("ref code collision: %s", code)
			continue
		}
		return code, nil
	}
	return "", lastErr
}

// LookupUserByRefCode resolves a code to its owner; "" when unknown.
func (s *ReferralService) LookupUserByRefCode(code string) (string, error) {
	var row models.RefCode
	err := s.DB.Where("code = ?", code).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.DiscordUserID, nil
}

func randomCodeSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
