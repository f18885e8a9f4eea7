// services/availability.go
package services

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lashstudio-backend/models"
	"lashstudio-backend/utils"
)

// TimeBlock is one offerable contiguous run of free slots.
type TimeBlock struct {
	StartTime string `json:"start"`
	EndTime   string `json:"end"`
}

// AvailableTimesResult carries the blocks plus the display mode the
// filter ran in ("tight" or "free").
type AvailableTimesResult struct {
	Mode  string      `json:"mode"`
	Times []TimeBlock `json:"times"`
}

// SlotsNeeded returns how many one-hour slots a service duration spans.
func SlotsNeeded(durationMin int) int {
	if durationMin <= 0 {
		return 1
	}
	return (durationMin + 59) / 60
}

// consecutiveRunAt reports whether a qualifying run of `needed` free,
// exactly abutting slots starts at index i.
func consecutiveRunAt(slots []models.Slot, i, needed int) bool {
	if i+needed > len(slots) {
		return false
	}
	for j := 0; j < needed; j++ {
		if slots[i+j].IsBooked {
			return false
		}
		if j > 0 && slots[i+j-1].EndTime != slots[i+j].StartTime {
			return false
		}
	}
	return true
}

// HasConsecutiveFree reports whether the slot list (sorted by start
// time) contains at least one run of `needed` consecutive free slots.
func HasConsecutiveFree(slots []models.Slot, needed int) bool {
	for i := range slots {
		if slots[i].IsBooked {
			continue
		}
		if i+needed > len(slots) {
			break
		}
		if consecutiveRunAt(slots, i, needed) {
			return true
		}
	}
	return false
}

// adjacentToBooked reports whether a block shares an edge with some
// booked slot: it starts right where a booked slot ends, or ends right
// where one starts.
func adjacentToBooked(blockStart, blockEnd string, slots []models.Slot) bool {
	for _, s := range slots {
		if !s.IsBooked {
			continue
		}
		if blockStart == s.EndTime || blockEnd == s.StartTime {
			return true
		}
	}
	return false
}

// FindBookableBlocks returns every qualifying run of `needed` slots as a
// (start, end) block. In tight mode, once the date already has a booked
// slot, only blocks adjacent to a booked slot's edge are kept so
// near-term bookings fill gaps instead of fragmenting the day. With no
// bookings yet there is no reference point and the full list is kept.
func FindBookableBlocks(slots []models.Slot, needed int, tight bool) []TimeBlock {
	blocks := []TimeBlock{}
	hasBookings := false
	for _, s := range slots {
		if s.IsBooked {
			hasBookings = true
			break
		}
	}

	for i := range slots {
		if slots[i].IsBooked {
			continue
		}
		if i+needed > len(slots) {
			break
		}
		if !consecutiveRunAt(slots, i, needed) {
			continue
		}

		blockStart := slots[i].StartTime
		blockEnd := slots[i+needed-1].EndTime

		if tight && hasBookings && !adjacentToBooked(blockStart, blockEnd, slots) {
			continue
		}
		blocks = append(blocks, TimeBlock{StartTime: blockStart, EndTime: blockEnd})
	}
	return blocks
}

// AvailabilityService answers availability queries against the slot pool.
type AvailabilityService struct {
	db        *gorm.DB
	tightDays int
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	tightDays := 3 // default: dates within 3 days use tight mode
	if env := os.Getenv("TIGHT_BOOKING_DAYS"); env != "" {
		if d, err := strconv.Atoi(env); err == nil {
			tightDays = d
		}
	}
	return &AvailabilityService{db: db, tightDays: tightDays}
}

func (s *AvailabilityService) slotsForDate(date string) ([]models.Slot, error) {
	var slots []models.Slot
	err := s.db.Where("date = ?", date).Order("start_time ASC").Find(&slots).Error
	return slots, err
}

// slotsNeededForService resolves an active service and its slot count.
// A nil service id means "any date with at least one free slot".
func (s *AvailabilityService) slotsNeededForService(serviceID *uuid.UUID) (int, error) {
	if serviceID == nil {
		return 1, nil
	}
	var service models.Service
	err := s.db.Where("id = ? AND is_active = ?", *serviceID, true).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return SlotsNeeded(service.Duration), nil
}

// AvailableDates lists future dates with at least one qualifying run for
// the service.
func (s *AvailabilityService) AvailableDates(serviceID *uuid.UUID) ([]string, error) {
	needed, err := s.slotsNeededForService(serviceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	var dates []string
	err = s.db.Model(&models.Slot{}).
		Where("is_booked = ? AND date >= ?", false, utils.Today()).
		Distinct("date").
		Order("date ASC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}

	valid := []string{}
	for _, date := range dates {
		slots, err := s.slotsForDate(date)
		if err != nil {
			return nil, err
		}
		if HasConsecutiveFree(slots, needed) {
			valid = append(valid, date)
		}
	}
	return valid, nil
}

// AvailableTimes lists offerable blocks for a service on a date.
func (s *AvailabilityService) AvailableTimes(date string, serviceID uuid.UUID) (*AvailableTimesResult, error) {
	if !utils.ValidDate(date) {
		return nil, ErrValidation
	}

	needed, err := s.slotsNeededForService(&serviceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &AvailableTimesResult{Mode: "free", Times: []TimeBlock{}}, nil
		}
		return nil, err
	}

	slots, err := s.slotsForDate(date)
	if err != nil {
		return nil, err
	}

	target, _ := time.Parse(utils.DateFormat, date)
	tight := utils.DaysBetween(time.Now(), target) <= s.tightDays

	mode := "free"
	if tight {
		mode = "tight"
	}
	return &AvailableTimesResult{
		Mode:  mode,
		Times: FindBookableBlocks(slots, needed, tight),
	}, nil
}

// CalendarDay is the per-day availability summary for the calendar view.
type CalendarDay struct {
	Date     string `json:"date"`
	Total    int    `json:"total"`
	Free     int    `json:"free"`
	Bookable bool   `json:"bookable"`
}

// Calendar returns slot stats for every remaining day of a month.
func (s *AvailabilityService) Calendar(year, month int, serviceID *uuid.UUID) ([]CalendarDay, error) {
	if month < 1 || month > 12 {
		return nil, ErrValidation
	}

	needed, err := s.slotsNeededForService(serviceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			needed = 1
		} else {
			return nil, err
		}
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	today := utils.Today()

	days := []CalendarDay{}
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(utils.DateFormat)
		if date < today {
			continue
		}

		slots, err := s.slotsForDate(date)
		if err != nil {
			return nil, err
		}

		free := 0
		for _, slot := range slots {
			if !slot.IsBooked {
				free++
			}
		}

		bookable := false
		if len(slots) > 0 {
			if serviceID != nil {
				bookable = HasConsecutiveFree(slots, needed)
			} else {
				bookable = free > 0
			}
		}

		days = append(days, CalendarDay{
			Date:     date,
			Total:    len(slots),
			Free:     free,
			Bookable: bookable,
		})
	}
	return days, nil
}
