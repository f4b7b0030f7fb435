package models

import (
	"cbs/src/types"
	"time"
)

type Reservation struct {
	ID             uint                    `gorm:"primarykey" json:"id"`
	CourtID        uint                    `gorm:"index" json:"court_id,omitempty"`
	UserID         uint                    `json:"user_id,omitempty"`
	StartTime      time.Time               `json:"start_time"`
	EndTime        time.Time               `json:"end_time"`
	TotalPrice     float64                 `json:"total_price"`
	Status         types.ReservationStatus `gorm:"default:'pending'" json:"status,omitempty"`
	CurrentPlayers uint8                   `json:"current_players,omitempty"`
	NeededPlayers  uint8                   `json:"needed_players,omitempty"`
	AllowJoin      bool                    `json:"allow_join,omitempty"`

	Court *Court `gorm:"foreignKey:court_id" json:"court,omitempty"`
	User  *User  `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
