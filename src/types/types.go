package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type ReservationStatus string

const (
	RESERVATION_PENDING   ReservationStatus = "pending"
	RESERVATION_CONFIRMED ReservationStatus = "confirmed"
	RESERVATION_COMPLETED ReservationStatus = "completed"
	RESERVATION_CANCELED  ReservationStatus = "cancelled"
)

// RewardAction is the typed action recorded on every ledger entry. Reward rules
// key their idempotency off these values, never off free-text descriptions.
type RewardAction string

const (
	REWARD_FIRST_BOOKING RewardAction = "first_booking"
	REWARD_OFF_PEAK      RewardAction = "off_peak"
	REWARD_COMPLETION    RewardAction = "completion"
	REWARD_CONSECUTIVE   RewardAction = "consecutive"
)

type CreateBookingRequestBody struct {
	CourtID       uint    `json:"court_id" binding:"required"`
	StartTime     string  `json:"start_time" binding:"required,bookabledate,ltdate=EndTime"`
	EndTime       string  `json:"end_time" binding:"required,bookabledate"`
	PromotionCode *string `json:"promotion_code,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type PromotionCodeURIParams struct {
	Code string `uri:"code" binding:"required"`
}

type Handler func(payload string)
