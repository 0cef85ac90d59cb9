// services/event_ledger.go
package services

import (
	"referral-reward-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventLedger deduplicates webhook deliveries by event id. An absent id is
// never marked and never reported as seen.
type EventLedger struct {
	DB *gorm.DB
}

func NewEventLedger(db *gorm.DB) *EventLedger {
	return &EventLedger{DB: db}
}

// Seen reports whether the event id was already applied.
func (l *EventLedger) Seen(eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}
	var count int64
	err := l.DB.Model(&models.CountedEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count > 0, err
}

// Mark records the event id with an atomic insert-if-absent and reports
// whether this call inserted the row. Under concurrent duplicate delivery
// only one caller sees true; the rest must treat the event as a duplicate.
func (l *EventLedger) Mark(eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}
	res := l.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&models.CountedEvent{EventID: eventID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
