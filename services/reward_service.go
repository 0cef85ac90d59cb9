// services/reward_service.go
package services

import (
	"log"

	"referral-reward-system/models"

	"gorm.io/gorm"
)

// RewardThreshold is the referral count that earns the one-time reward.
const RewardThreshold = 3

// RewardDispatcher delivers the external reward effects. Both calls are
// fire-and-forget relative to the ledger: a failure is logged, never retried,
// and never rolls back the rewarded flag.
type RewardDispatcher interface {
	GrantRole(discordUserID string) error
	Announce(discordUserID string) error
}

type RewardService struct {
	DB         *gorm.DB
	Referrals  *ReferralService
	Dispatcher RewardDispatcher
}

func NewRewardService(db *gorm.DB, referrals *ReferralService, dispatcher RewardDispatcher) *RewardService {
	return &RewardService{DB: db, Referrals: referrals, Dispatcher: dispatcher}
}

// EvaluateThreshold grants the reward when the user has crossed the threshold
// and has not been rewarded yet. The flag flips before the external effects
// so the reward stays a one-time event regardless of delivery outcome.
func (s *RewardService) EvaluateThreshold(discordID string) error {
	user, err := s.Referrals.GetUser(discordID)
	if err != nil {
		return err
	}
	if user.Referrals < RewardThreshold || user.Rewarded {
		return nil
	}

	if err := s.Referrals.MarkRewarded(discordID); err != nil {
		return err
	}

	if s.Dispatcher == nil {
		log.Printf("⚠️ No reward dispatcher configured; reward for %s marked without delivery", discordID)
		return nil
	}
	if err := s.Dispatcher.GrantRole(discordID); err != nil {
		log.Printf("❌ Reward role grant failed for %s: %v", discordID, err)
	}
	if err := s.Dispatcher.Announce(discordID); err != nil {
		log.Printf("❌ Reward announcement failed for %s: %v", discordID, err)
	}
	return nil
}

// SweepUnrewarded re-evaluates users who crossed the threshold but whose flag
// is still false (e.g. a crash between credit and evaluation).
func (s *RewardService) SweepUnrewarded() error {
	var users []models.User
	if err := s.DB.Where("referrals >= ? AND rewarded = ?", RewardThreshold, false).
		Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		if err := s.EvaluateThreshold(u.DiscordUserID); err != nil {
			log.Printf("[RewardSweep] evaluation failed for %s: %v", u.DiscordUserID, err)
		}
	}
	return nil
}
