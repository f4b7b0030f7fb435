package models

import "time"

// SlotLock is the advisory lease over a (court, start, end) key. It sheds
// contention before the transactional path; it is never the correctness
// boundary. The unique index keeps at most one row per timeslot key.
type SlotLock struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CourtID   uint      `gorm:"uniqueIndex:idx_slot_lock_key" json:"court_id"`
	StartTime time.Time `gorm:"uniqueIndex:idx_slot_lock_key" json:"start_time"`
	EndTime   time.Time `gorm:"uniqueIndex:idx_slot_lock_key" json:"end_time"`
	OwnerID   uint      `json:"owner_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
}
