package common

import (
	"cbs/src/config"
	"cbs/src/db"
	"cbs/src/models"
	"cbs/src/types"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

type rewardRule struct {
	name string
	fn   func(tx *gorm.DB, r *models.Reservation) error
}

// RunRewardCascade evaluates the bonus rules for a reservation after it
// commits. Rules run independently, each in its own transaction; a failing or
// panicking rule is logged and never aborts the others or the booking.
func RunRewardCascade(r *models.Reservation) {
	var rules []rewardRule
	switch r.Status {
	case types.RESERVATION_PENDING:
		rules = []rewardRule{
			{name: "first_booking", fn: firstBookingBonus},
			{name: "off_peak", fn: offPeakBonus},
		}
	case types.RESERVATION_COMPLETED:
		rules = []rewardRule{
			{name: "completion", fn: completionBonus},
			{name: "consecutive", fn: consecutiveBonus},
		}
	default:
		return
	}
	db := db.GetDb()
	for _, rule := range rules {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("[rewards] rule %s panicked: %v\n", rule.name, rec)
				}
			}()
			if err := db.Transaction(func(tx *gorm.DB) error {
				return rule.fn(tx, r)
			}); err != nil {
				log.Printf("[rewards] rule %s skipped for user %d: %s\n", rule.name, r.UserID, err.Error())
			}
		}()
	}
}

// award appends a ledger entry and bumps the materialized balance in one
// transaction. The unique dedupe key turns a repeat award into an insert
// error, which the cascade logs and drops.
func award(tx *gorm.DB, userID uint, points int, action types.RewardAction, description, dedupeKey string, sourceID uint, sourceType string) error {
	entry := models.RewardLedgerEntry{
		UserID:      userID,
		Points:      points,
		Action:      action,
		Description: description,
		SourceID:    sourceID,
		SourceType:  sourceType,
		DedupeKey:   dedupeKey,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}
	return tx.
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", points)).
		Error
}

// CompletionPoints converts a booking's total price into bonus points.
func CompletionPoints(totalPrice float64) int {
	points := int(totalPrice / config.RewardPointsDivisor())
	if points < 0 {
		return 0
	}
	return points
}

// InOffPeakWindow reports whether hour falls in the half-open [start, end)
// off-peak window.
func InOffPeakWindow(hour, start, end int) bool {
	return hour >= start && hour < end
}

// ConsecutiveDedupeKey scopes the consecutive bonus to one award per user per
// calendar month.
func ConsecutiveDedupeKey(userID uint, at time.Time) string {
	return fmt.Sprintf("consecutive:%d:%s", userID, at.Format("2006-01"))
}

func firstBookingBonus(tx *gorm.DB, r *models.Reservation) error {
	var prior int64
	if err := tx.
		Model(&models.RewardLedgerEntry{}).
		Where(&models.RewardLedgerEntry{UserID: r.UserID, Action: types.REWARD_FIRST_BOOKING}).
		Count(&prior).
		Error; err != nil {
		return err
	}
	if prior > 0 {
		return nil
	}
	key := fmt.Sprintf("first_booking:%d", r.UserID)
	return award(tx, r.UserID, config.FirstBookingPoints(), types.REWARD_FIRST_BOOKING, "Welcome bonus for your first booking", key, r.ID, "reservation")
}

func offPeakBonus(tx *gorm.DB, r *models.Reservation) error {
	start, end := config.OffPeakWindow()
	if !InOffPeakWindow(r.StartTime.Local().Hour(), start, end) {
		return nil
	}
	key := fmt.Sprintf("off_peak:reservation:%d", r.ID)
	return award(tx, r.UserID, config.OffPeakPoints(), types.REWARD_OFF_PEAK, "Off-peak booking bonus", key, r.ID, "reservation")
}

func completionBonus(tx *gorm.DB, r *models.Reservation) error {
	points := CompletionPoints(r.TotalPrice)
	if points == 0 {
		return nil
	}
	key := fmt.Sprintf("completion:reservation:%d", r.ID)
	return award(tx, r.UserID, points, types.REWARD_COMPLETION, "Completed booking bonus", key, r.ID, "reservation")
}

func consecutiveBonus(tx *gorm.DB, r *models.Reservation) error {
	since := time.Now().Add(-30 * 24 * time.Hour)
	var completed int64
	if err := tx.
		Model(&models.Reservation{}).
		Where(&models.Reservation{UserID: r.UserID, Status: types.RESERVATION_COMPLETED}).
		Where("end_time > ?", since).
		Count(&completed).
		Error; err != nil {
		return err
	}
	if completed < config.ConsecutiveThreshold() {
		return nil
	}
	key := ConsecutiveDedupeKey(r.UserID, time.Now())
	return award(tx, r.UserID, config.ConsecutivePoints(), types.REWARD_CONSECUTIVE, "Consecutive bookings bonus", key, r.ID, "reservation")
}
