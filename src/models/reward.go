package models

import (
	"cbs/src/types"
	"time"
)

// RewardLedgerEntry is append-only. Points are signed; a user's balance is the
// materialized running sum kept on the users row. DedupeKey makes every rule
// provably non-duplicating: a repeat award collides on the unique index.
type RewardLedgerEntry struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	UserID      uint               `gorm:"index" json:"user_id"`
	Points      int                `json:"points"`
	Action      types.RewardAction `json:"action"`
	Description string             `json:"description,omitempty"`
	SourceID    uint               `json:"source_id,omitempty"`
	SourceType  string             `json:"source_type,omitempty"`
	DedupeKey   string             `gorm:"uniqueIndex" json:"-"`
	CreatedAt   time.Time          `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
}
