// services/slots.go
package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lashstudio-backend/models"
	"lashstudio-backend/utils"
)

// SlotTime is one explicit slot in a manual create request.
type SlotTime struct {
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// SlotService is the operator's slot pool management.
type SlotService struct {
	db       *gorm.DB
	dayStart int
	dayEnd   int
}

func NewSlotService(db *gorm.DB) *SlotService {
	dayStart, dayEnd := 12, 20 // default working day 12:00-20:00
	if env := os.Getenv("OPEN_DAY_START_HOUR"); env != "" {
		if h, err := strconv.Atoi(env); err == nil {
			dayStart = h
		}
	}
	if env := os.Getenv("OPEN_DAY_END_HOUR"); env != "" {
		if h, err := strconv.Atoi(env); err == nil {
			dayEnd = h
		}
	}
	return &SlotService{db: db, dayStart: dayStart, dayEnd: dayEnd}
}

// List returns all slots for a date, booked ones included.
func (s *SlotService) List(date string) ([]models.Slot, error) {
	var slots []models.Slot
	err := s.db.Where("date = ?", date).Order("start_time ASC").Find(&slots).Error
	return slots, err
}

// Create inserts explicit slots for a date.
func (s *SlotService) Create(date string, times []SlotTime) ([]models.Slot, error) {
	if !utils.ValidDate(date) {
		return nil, fmt.Errorf("%w: invalid date format", ErrValidation)
	}
	for _, t := range times {
		if !utils.ValidTime(t.StartTime) || !utils.ValidTime(t.EndTime) {
			return nil, fmt.Errorf("%w: invalid time format", ErrValidation)
		}
		slot := models.Slot{Date: date, StartTime: t.StartTime, EndTime: t.EndTime}
		if err := s.db.Create(&slot).Error; err != nil {
			return nil, err
		}
	}
	return s.List(date)
}

// OpenDay creates the full working day of one-hour slots. Idempotent
// per date + start time, so re-opening a day fills only the gaps.
func (s *SlotService) OpenDay(date string) ([]models.Slot, error) {
	if !utils.ValidDate(date) {
		return nil, fmt.Errorf("%w: invalid date format", ErrValidation)
	}

	for hour := s.dayStart; hour < s.dayEnd; hour++ {
		start := fmt.Sprintf("%02d:00", hour)
		end := fmt.Sprintf("%02d:00", hour+1)

		var count int64
		err := s.db.Model(&models.Slot{}).
			Where("date = ? AND start_time = ?", date, start).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}

		slot := models.Slot{Date: date, StartTime: start, EndTime: end}
		if err := s.db.Create(&slot).Error; err != nil {
			return nil, err
		}
	}
	return s.List(date)
}

// Delete removes a slot, refused while a booking owns it.
func (s *SlotService) Delete(slotID uuid.UUID) error {
	var slot models.Slot
	if err := s.db.First(&slot, "id = ?", slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: slot not found", ErrNotFound)
		}
		return err
	}
	if slot.IsBooked {
		return fmt.Errorf("%w: slot is booked, cancel the booking first", ErrConflict)
	}
	return s.db.Delete(&models.Slot{}, "id = ?", slotID).Error
}
