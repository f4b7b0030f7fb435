package models

import "cbs/src/types"

type Court struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `json:"name,omitempty"`
	Surface     string  `json:"surface,omitempty"`
	Location    string  `json:"location,omitempty"`
	IsAvailable bool    `json:"is_available"`
	HourlyRate  float64 `json:"hourly_rate,omitempty"`

	Reservations []*Reservation `json:"reservations,omitempty"`

	types.Timestamps
}
