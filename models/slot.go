package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot is one fixed one-hour bookable time unit. Dates are stored as
// YYYY-MM-DD and times as HH:MM so chronological order matches string
// order and adjacency is an exact string comparison.
//
// Invariant: IsBooked is true iff BookingID is set, and a slot is owned
// by at most one active booking at a time.
type Slot struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Date      string     `gorm:"type:varchar(10);index:idx_slots_date;index:idx_slots_date_booked,priority:1;not null" json:"date"`
	StartTime string     `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime   string     `gorm:"type:varchar(5);not null" json:"endTime"`
	IsBooked  bool       `gorm:"index:idx_slots_date_booked,priority:2;default:false" json:"isBooked"`
	BookingID *uuid.UUID `gorm:"type:uuid;index" json:"bookingId"`
}

func (s *Slot) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
