package common

import (
	"cbs/src/config"
	"cbs/src/db"
	"cbs/src/models"
	"cbs/src/types"
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotPrice computes the undiscounted price for a timeslot from the court's
// hourly rate, pro-rating fractional hours.
func SlotPrice(hourlyRate float64, start, end time.Time) float64 {
	return hourlyRate * end.Sub(start).Hours()
}

// CreateReservation is the authoritative booking path. Everything runs in one
// transaction bounded by the configured timeout: the court gate, the overlap
// check, the promotion consumption and the reservation insert commit or roll
// back together.
//
// The overlap query locks candidate rows FOR UPDATE SKIP LOCKED. A row held
// by a concurrent writer drops out of the result set, and concurrent creators
// of the row we would conflict with serialize on the insert; either way at
// most one of N racing requests observes zero conflicts and commits. Rows
// locked elsewhere are treated as conflicts, which biases toward rejecting,
// never toward double-booking.
func CreateReservation(ctx context.Context, courtID, userID uint, start, end time.Time, promoCode *string) (*models.Reservation, *models.PromotionUsage, error) {
	db := db.GetDb()
	txCtx, cancel := context.WithTimeout(ctx, config.BookingTxTimeout())
	defer cancel()

	var reservation models.Reservation
	var usage *models.PromotionUsage
	err := db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		var court models.Court
		if err := tx.
			Where(&models.Court{ID: courtID}).
			First(&court).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourtNotFound
			}
			return err
		}
		if !court.IsAvailable {
			return ErrCourtUnavailable
		}

		var clash models.Reservation
		err := tx.
			Model(&models.Reservation{}).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("court_id = ?", courtID).
			Where("status <> ?", types.RESERVATION_CANCELED).
			Where("start_time < ? AND end_time > ?", end, start).
			Take(&clash).
			Error
		if err == nil {
			return ErrSlotTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		price := SlotPrice(court.HourlyRate, start, end)
		var promo *models.Promotion
		if promoCode != nil && *promoCode != "" {
			promo, err = VerifyPromotion(tx, *promoCode, userID)
			if err != nil {
				return err
			}
		}

		reservation = models.Reservation{
			CourtID:        courtID,
			UserID:         userID,
			StartTime:      start,
			EndTime:        end,
			TotalPrice:     price,
			Status:         types.RESERVATION_PENDING,
			CurrentPlayers: 1,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}

		if promo != nil {
			discounted, u, err := ApplyPromotion(tx, promo, userID, reservation.ID, price)
			if err != nil {
				return err
			}
			if err := tx.
				Model(&models.Reservation{}).
				Where("id = ?", reservation.ID).
				Update("total_price", discounted).
				Error; err != nil {
				return err
			}
			reservation.TotalPrice = discounted
			usage = u
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &reservation, usage, nil
}

// CancelReservation flips a reservation to cancelled, which frees its
// timeslot for the overlap predicate.
func CancelReservation(reservationID, userID uint) (*models.Reservation, error) {
	db := db.GetDb()
	var reservation models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Reservation{ID: reservationID, UserID: userID}).
			First(&reservation).
			Error; err != nil {
			return err
		}
		if reservation.Status == types.RESERVATION_CANCELED {
			return nil
		}
		return tx.
			Model(&models.Reservation{}).
			Where("id = ?", reservation.ID).
			Update("status", types.RESERVATION_CANCELED).
			Error
	})
	if err != nil {
		return nil, err
	}
	reservation.Status = types.RESERVATION_CANCELED
	return &reservation, nil
}

// CompleteReservation marks a pending reservation completed and runs the
// completed-stage reward rules. Scoped to the owner so nobody can ripen
// another user's rewards early.
func CompleteReservation(reservationID, userID uint) (*models.Reservation, error) {
	db := db.GetDb()
	var reservation models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Reservation{ID: reservationID, UserID: userID, Status: types.RESERVATION_PENDING}).
			First(&reservation).
			Error; err != nil {
			return err
		}
		return tx.
			Model(&models.Reservation{}).
			Where("id = ?", reservation.ID).
			Update("status", types.RESERVATION_COMPLETED).
			Error
	})
	if err != nil {
		return nil, err
	}
	reservation.Status = types.RESERVATION_COMPLETED
	RunRewardCascade(&reservation)
	return &reservation, nil
}

// CompleteElapsedReservations sweeps pending reservations whose end time has
// passed. Wired to the scheduler from boot.
func CompleteElapsedReservations() {
	db := db.GetDb()
	var elapsed []models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Select("id", "user_id").
		Where(&models.Reservation{Status: types.RESERVATION_PENDING}).
		Where("end_time < ?", time.Now()).
		Limit(100).
		Find(&elapsed).
		Error
	if err != nil {
		log.Printf("Error finding elapsed reservations: %s\n", err.Error())
		return
	}
	for _, r := range elapsed {
		if _, err := CompleteReservation(r.ID, r.UserID); err != nil {
			log.Printf("Error completing reservation %d: %s\n", r.ID, err.Error())
		}
	}
}

// JoinReservation adds a player to an open-join game. The row lock serializes
// concurrent joins so the player count cannot exceed the needed count.
func JoinReservation(reservationID, userID uint) (*models.Reservation, error) {
	db := db.GetDb()
	var reservation models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Reservation{ID: reservationID}).
			First(&reservation).
			Error; err != nil {
			return err
		}
		if !reservation.AllowJoin || reservation.Status == types.RESERVATION_CANCELED || reservation.Status == types.RESERVATION_COMPLETED {
			return ErrJoinNotAllowed
		}
		if reservation.NeededPlayers > 0 && reservation.CurrentPlayers >= reservation.NeededPlayers {
			return ErrGameFull
		}
		reservation.CurrentPlayers++
		return tx.
			Model(&models.Reservation{}).
			Where("id = ?", reservation.ID).
			Update("current_players", reservation.CurrentPlayers).
			Error
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}
