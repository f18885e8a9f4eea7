// services/booking.go
package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lashstudio-backend/models"
	"lashstudio-backend/utils"
)

// CreateBookingInput is the client's booking request.
type CreateBookingInput struct {
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	StartTime string    `json:"startTime" binding:"required"`
	WithAddon bool      `json:"withAddon"`
}

// BookingDetail is a booking joined with its service for API responses.
type BookingDetail struct {
	models.Booking
	ServiceName string  `json:"serviceName"`
	TotalPrice  float64 `json:"totalPrice"`
}

// CancelResult tells the caller what happened to the prepayment.
type CancelResult struct {
	Message    string `json:"message"`
	RefundInfo string `json:"refundInfo,omitempty"`
}

// BookingService owns the booking lifecycle: slot reservation, payment
// intent creation, cancellation and the refund policy.
type BookingService struct {
	db           *gorm.DB
	gateway      *PaymentGateway
	notifier     *Notifier
	prepayAmount float64
}

func NewBookingService(db *gorm.DB, gateway *PaymentGateway, notifier *Notifier) *BookingService {
	prepay := 1000.0 // default deposit
	if env := os.Getenv("PREPAYMENT_AMOUNT"); env != "" {
		if v, err := strconv.ParseFloat(env, 64); err == nil {
			prepay = v
		}
	}
	return &BookingService{
		db:           db,
		gateway:      gateway,
		notifier:     notifier,
		prepayAmount: prepay,
	}
}

// activeAddonPrice returns the price of the active addon service, or 0
// when none is configured.
func (s *BookingService) activeAddonPrice() float64 {
	var addon models.Service
	err := s.db.Where("service_type = ? AND is_active = ?", models.ServiceTypeAddon, true).
		Order("sort_order ASC").First(&addon).Error
	if err != nil {
		return 0
	}
	return addon.Price
}

// ClaimSlot conditionally marks a slot booked for a booking. Exactly one
// of several concurrent claims on the same slot succeeds; losers observe
// zero rows affected.
func ClaimSlot(db *gorm.DB, slotID, bookingID uuid.UUID) (bool, error) {
	res := db.Model(&models.Slot{}).
		Where("id = ? AND is_booked = ?", slotID, false).
		Updates(map[string]interface{}{"is_booked": true, "booking_id": bookingID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseSlots returns every slot owned by a booking to the free pool.
// Idempotent, safe to repeat for the same booking.
func ReleaseSlots(db *gorm.DB, bookingID uuid.UUID) error {
	return db.Model(&models.Slot{}).
		Where("booking_id = ?", bookingID).
		Updates(map[string]interface{}{"is_booked": false, "booking_id": nil}).Error
}

// rollback compensates a partially created booking: the booking is
// expired and every slot already claimed in this attempt is released.
func (s *BookingService) rollback(bookingID uuid.UUID) {
	if err := s.db.Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"status":         models.BookingExpired,
			"payment_status": models.PaymentNone,
		}).Error; err != nil {
		log.Printf("[BOOKING] Rollback of booking %s failed: %v", bookingID, err)
	}
	if err := ReleaseSlots(s.db, bookingID); err != nil {
		log.Printf("[BOOKING] Slot release for booking %s failed: %v", bookingID, err)
	}
}

// Create reserves the slots for a service, creates the booking in
// pending_payment and requests a payment intent. Any failure after a
// partial slot claim triggers the compensating rollback before the
// error is returned.
func (s *BookingService) Create(clientID uuid.UUID, clientName string, input CreateBookingInput) (*BookingDetail, string, error) {
	if !utils.ValidDate(input.Date) || !utils.ValidTime(input.StartTime) {
		return nil, "", fmt.Errorf("%w: invalid date or time format", ErrValidation)
	}

	var service models.Service
	err := s.db.Where("id = ? AND is_active = ? AND service_type = ?",
		input.ServiceID, true, models.ServiceTypeMain).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: service not found", ErrNotFound)
		}
		return nil, "", err
	}

	endTime := utils.AddMinutes(input.StartTime, service.Duration)

	var slots []models.Slot
	err = s.db.Where("date = ? AND start_time >= ? AND end_time <= ?",
		input.Date, input.StartTime, endTime).
		Order("start_time ASC").Find(&slots).Error
	if err != nil {
		return nil, "", err
	}

	needed := SlotsNeeded(service.Duration)
	if len(slots) < needed {
		return nil, "", fmt.Errorf("%w: not enough slots for this time", ErrNotFound)
	}
	for _, slot := range slots {
		if slot.IsBooked {
			return nil, "", fmt.Errorf("%w: one of the selected times is already taken", ErrConflict)
		}
	}

	totalPrice := service.Price
	if input.WithAddon {
		totalPrice += s.activeAddonPrice()
	}

	booking := models.Booking{
		ServiceID:     service.ID,
		ClientID:      clientID,
		ClientName:    clientName,
		Date:          input.Date,
		StartTime:     input.StartTime,
		EndTime:       endTime,
		WithAddon:     input.WithAddon,
		Status:        models.BookingPendingPayment,
		PaymentStatus: models.PaymentPending,
		PrepaidAmount: s.prepayAmount,
	}
	if err := s.db.Create(&booking).Error; err != nil {
		return nil, "", err
	}

	// Claim each slot conditionally. There is no cross-row transaction
	// here: losing any claim means another request won the race, and we
	// compensate by rolling back our own partial reservation.
	for _, slot := range slots {
		claimed, err := ClaimSlot(s.db, slot.ID, booking.ID)
		if err != nil || !claimed {
			s.rollback(booking.ID)
			if err != nil {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("%w: one of the selected times is already taken", ErrConflict)
		}
	}

	description := fmt.Sprintf("Prepayment for %s on %s %s", service.Name, input.Date, input.StartTime)
	paymentID, confirmationURL, err := s.gateway.CreatePayment(booking.ID, s.prepayAmount, description)
	if err != nil {
		log.Printf("[BOOKING] Payment intent for booking %s failed: %v", booking.ID, err)
		s.rollback(booking.ID)
		return nil, "", fmt.Errorf("%w: could not start payment", ErrGateway)
	}

	if err := s.db.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("payment_id", paymentID).Error; err != nil {
		log.Printf("[BOOKING] Failed to persist payment id for booking %s: %v", booking.ID, err)
	}
	booking.PaymentID = paymentID

	detail := &BookingDetail{
		Booking:     booking,
		ServiceName: service.Name,
		TotalPrice:  totalPrice,
	}
	return detail, confirmationURL, nil
}

// refundDecision applies the refund policy. Operator cancellations
// always refund a paid booking; client cancellations refund only when
// the appointment start is more than 24 hours away.
func (s *BookingService) refundDecision(booking *models.Booking, byOperator bool) string {
	if booking.PaymentStatus != models.PaymentPaid {
		return ""
	}

	if !byOperator {
		start, err := utils.AppointmentStart(booking.Date, booking.StartTime)
		if err != nil || time.Until(start) <= 24*time.Hour {
			return "Prepayment is forfeited: cancellation less than 24 hours before the appointment"
		}
	}

	if err := s.gateway.CreateRefund(booking.PaymentID, booking.PrepaidAmount); err != nil {
		log.Printf("[BOOKING] Refund for booking %s failed: %v", booking.ID, err)
		return "Refund could not be processed automatically, it will be handled manually"
	}

	if err := s.db.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("payment_status", models.PaymentRefunded).Error; err != nil {
		log.Printf("[BOOKING] Failed to mark booking %s refunded: %v", booking.ID, err)
	}
	booking.PaymentStatus = models.PaymentRefunded
	return "Prepayment refunded"
}

// Cancel moves a confirmed or pending_payment booking to cancelled and
// releases its slots. clientID nil means an operator-initiated
// cancellation; clients may only cancel their own bookings.
func (s *BookingService) Cancel(bookingID uuid.UUID, clientID *uuid.UUID) (*CancelResult, error) {
	byOperator := clientID == nil

	query := s.db.Where("id = ? AND status IN ?", bookingID,
		[]string{models.BookingConfirmed, models.BookingPendingPayment})
	if !byOperator {
		query = query.Where("client_id = ?", *clientID)
	}

	var booking models.Booking
	if err := query.First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
		}
		return nil, err
	}

	refundInfo := s.refundDecision(&booking, byOperator)

	now := time.Now()
	if err := s.db.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"status":       models.BookingCancelled,
			"cancelled_at": &now,
		}).Error; err != nil {
		return nil, err
	}

	if err := ReleaseSlots(s.db, booking.ID); err != nil {
		log.Printf("[BOOKING] Slot release for cancelled booking %s failed: %v", booking.ID, err)
	}

	var service models.Service
	serviceName := "?"
	if err := s.db.First(&service, "id = ?", booking.ServiceID).Error; err == nil {
		serviceName = service.Name
	}
	s.notifier.BookingCancelled(&booking, serviceName, byOperator)

	return &CancelResult{Message: "Booking cancelled", RefundInfo: refundInfo}, nil
}

// Status returns the lifecycle and payment status of a booking.
func (s *BookingService) Status(bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
		}
		return nil, err
	}
	return &booking, nil
}

// MyBookings lists the client's upcoming confirmed bookings.
func (s *BookingService) MyBookings(clientID uuid.UUID) ([]BookingDetail, error) {
	var bookings []models.Booking
	err := s.db.Where("client_id = ? AND status = ? AND date >= ?",
		clientID, models.BookingConfirmed, utils.Today()).
		Order("date ASC, start_time ASC").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return s.withDetails(bookings)
}

// ListBookings is the operator view: by exact date, by range, or all
// upcoming when no filter is given. Confirmed bookings only.
func (s *BookingService) ListBookings(date, from, to string) ([]BookingDetail, error) {
	query := s.db.Where("status = ?", models.BookingConfirmed)
	switch {
	case date != "":
		query = query.Where("date = ?", date).Order("start_time ASC")
	case from != "" && to != "":
		query = query.Where("date BETWEEN ? AND ?", from, to).Order("date ASC, start_time ASC")
	default:
		query = query.Where("date >= ?", utils.Today()).Order("date ASC, start_time ASC")
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return s.withDetails(bookings)
}

func (s *BookingService) withDetails(bookings []models.Booking) ([]BookingDetail, error) {
	addonPrice := s.activeAddonPrice()
	details := []BookingDetail{}
	for _, b := range bookings {
		var service models.Service
		name := "?"
		total := 0.0
		if err := s.db.First(&service, "id = ?", b.ServiceID).Error; err == nil {
			name = service.Name
			total = service.Price
		}
		if b.WithAddon {
			total += addonPrice
		}
		details = append(details, BookingDetail{Booking: b, ServiceName: name, TotalPrice: total})
	}
	return details, nil
}
