// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRewardSweep runs the unrewarded-user sweep on a fixed interval.
func (s *RewardService) StartRewardSweep(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.SweepUnrewarded(); err != nil {
				log.Printf("[RewardSweep] DB error: %v", err)
			}
		}),
	)
}
