package models

import "cbs/src/types"

type User struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Points int    `json:"points"`

	Reservations []*Reservation `gorm:"foreignKey:user_id" json:"reservations,omitempty"`

	types.Timestamps
}
