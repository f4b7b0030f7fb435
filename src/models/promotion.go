package models

import (
	"cbs/src/types"
	"time"
)

type Promotion struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Code       string    `gorm:"uniqueIndex" json:"code"`
	Name       string    `json:"name,omitempty"`
	Percent    float64   `json:"percent"`
	IsActive   bool      `json:"is_active"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	UserID     *uint     `json:"user_id,omitempty"`
	UsageLimit *uint     `json:"usage_limit,omitempty"`

	Usages []*PromotionUsage `json:"usages,omitempty"`

	types.Timestamps
}

// PromotionUsage is both the audit record and the enforcement mechanism for
// one use per user per promotion: the unique index rejects a second insert.
type PromotionUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	PromotionID    uint      `gorm:"uniqueIndex:idx_promotion_user" json:"promotion_id"`
	UserID         uint      `gorm:"uniqueIndex:idx_promotion_user" json:"user_id"`
	BookingID      uint      `json:"booking_id"`
	DiscountAmount float64   `json:"discount_amount"`
	CreatedAt      time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`

	Promotion *Promotion `gorm:"foreignKey:promotion_id" json:"promotion,omitempty"`
}
