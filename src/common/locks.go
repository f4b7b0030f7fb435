package common

import (
	"cbs/src/db"
	"cbs/src/models"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// isDuplicateKey matches a unique-index collision whether or not the dialector
// translates it.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "SQLSTATE 23505")
}

// AcquireSlotLock takes the advisory lease for a (court, start, end) key.
// Expired rows for the key are swept lazily on each attempt, so a crashed
// holder self-heals without a background reaper. Re-acquisition by the same
// owner renews the lease; a live lease held by someone else returns
// ErrSlotLockHeld.
//
// This layer only sheds contention. Two callers can still race through the
// check-then-insert window here; CreateReservation is the correctness
// boundary.
func AcquireSlotLock(courtID uint, start, end time.Time, ownerID uint, ttl time.Duration) (*models.SlotLock, error) {
	db := db.GetDb()
	var lock models.SlotLock
	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		key := &models.SlotLock{CourtID: courtID, StartTime: start, EndTime: end}
		if err := tx.
			Where(key).
			Where("expires_at <= ?", now).
			Delete(&models.SlotLock{}).
			Error; err != nil {
			return err
		}
		err := tx.Where(key).First(&lock).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			lock = models.SlotLock{
				CourtID:   courtID,
				StartTime: start,
				EndTime:   end,
				OwnerID:   ownerID,
				ExpiresAt: now.Add(ttl),
			}
			// Two racers can both see no row here; the unique index picks the
			// winner and the loser reads as a held lock, not a server error.
			if err := tx.Create(&lock).Error; err != nil {
				if isDuplicateKey(err) {
					return ErrSlotLockHeld
				}
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}
		if lock.OwnerID != ownerID {
			return ErrSlotLockHeld
		}
		lock.ExpiresAt = now.Add(ttl)
		return tx.
			Model(&models.SlotLock{}).
			Where("id = ?", lock.ID).
			Update("expires_at", lock.ExpiresAt).
			Error
	})
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

// ReleaseSlotLock drops the lease matching the exact key and owner. Releasing
// a lock that no longer exists returns false and no error.
func ReleaseSlotLock(courtID uint, start, end time.Time, ownerID uint) (bool, error) {
	db := db.GetDb()
	res := db.
		Where(&models.SlotLock{CourtID: courtID, StartTime: start, EndTime: end, OwnerID: ownerID}).
		Delete(&models.SlotLock{})
	if res.Error != nil {
		log.Printf("Error releasing slot lock for court %d: %s\n", courtID, res.Error.Error())
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
