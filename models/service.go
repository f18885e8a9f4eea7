package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ServiceTypeMain  = "main"
	ServiceTypeAddon = "addon"
)

type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int       `json:"duration"` // in minutes
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	SortOrder   int       `gorm:"default:0" json:"sortOrder"`
	// 'main' services are bookable on their own; 'addon' services are
	// priced extras attached to a main booking.
	ServiceType string `gorm:"type:varchar(10);not null;default:'main'" json:"serviceType"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
