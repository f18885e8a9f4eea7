// services/payment.go
package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lashstudio-backend/models"
)

// Webhook event kinds the gateway sends. Anything else is acknowledged
// and ignored so the gateway does not retry.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCanceled  = "payment.canceled"
)

// WebhookEvent is the gateway callback payload, decoded once at the
// boundary.
type WebhookEvent struct {
	Event  string `json:"event"`
	Object struct {
		ID       string            `json:"id"`
		Status   string            `json:"status"`
		Metadata map[string]string `json:"metadata"`
	} `json:"object"`
}

// PaymentService reconciles bookings against the gateway: webhook
// callbacks plus the periodic expiry sweep for abandoned checkouts.
// Both paths guard on the current booking status, so duplicate webhook
// deliveries and webhook/sweep races resolve to a single application.
type PaymentService struct {
	db       *gorm.DB
	notifier *Notifier
	timeout  time.Duration
}

func NewPaymentService(db *gorm.DB, notifier *Notifier) *PaymentService {
	timeout := 15 * time.Minute // default checkout timeout
	if env := os.Getenv("PAYMENT_TIMEOUT_MINUTES"); env != "" {
		if m, err := strconv.Atoi(env); err == nil {
			timeout = time.Duration(m) * time.Minute
		}
	}
	return &PaymentService{db: db, notifier: notifier, timeout: timeout}
}

// ProcessWebhook applies a gateway event. It never returns an error for
// malformed or unknown events: the webhook endpoint always responds 200
// and problems are only logged.
func (s *PaymentService) ProcessWebhook(event WebhookEvent) {
	log.Printf("[PAYMENT] Webhook: event=%s, payment_id=%s, status=%s",
		event.Event, event.Object.ID, event.Object.Status)

	bookingID, err := uuid.Parse(event.Object.Metadata["booking_id"])
	if err != nil {
		log.Println("[PAYMENT] Webhook missing booking_id in metadata")
		return
	}

	switch event.Event {
	case EventPaymentSucceeded:
		s.confirmPaid(bookingID)
	case EventPaymentCanceled:
		s.expireBooking(bookingID)
	default:
		log.Printf("[PAYMENT] Ignoring webhook event: %s", event.Event)
	}
}

// confirmPaid moves a booking to confirmed/paid, guarded by the current
// status so replays of the same event are no-ops. The operator is
// notified only on the first application.
func (s *PaymentService) confirmPaid(bookingID uuid.UUID) {
	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingPendingPayment).
		Updates(map[string]interface{}{
			"status":         models.BookingConfirmed,
			"payment_status": models.PaymentPaid,
		})
	if res.Error != nil {
		log.Printf("[PAYMENT] Failed to confirm booking %s: %v", bookingID, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		// Already applied, or the sweep got there first.
		return
	}

	log.Printf("[PAYMENT] Payment succeeded for booking %s", bookingID)

	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", bookingID).Error; err != nil {
		return
	}
	var service models.Service
	serviceName := "?"
	if err := s.db.First(&service, "id = ?", booking.ServiceID).Error; err == nil {
		serviceName = service.Name
	}
	s.notifier.BookingPaid(&booking, serviceName)
}

// expireBooking moves a pending_payment booking to expired and releases
// its slots. Shared by the canceled-payment webhook and the sweep.
func (s *PaymentService) expireBooking(bookingID uuid.UUID) {
	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingPendingPayment).
		Updates(map[string]interface{}{
			"status":         models.BookingExpired,
			"payment_status": models.PaymentNone,
		})
	if res.Error != nil {
		log.Printf("[PAYMENT] Failed to expire booking %s: %v", bookingID, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		return
	}

	if err := ReleaseSlots(s.db, bookingID); err != nil {
		log.Printf("[PAYMENT] Slot release for expired booking %s failed: %v", bookingID, err)
	}
	log.Printf("[PAYMENT] Booking %s expired, slots released", bookingID)
}

// ExpirePending is the sweep for clients who abandoned checkout: every
// pending_payment booking older than the timeout is expired and its
// slots reclaimed. Runs on a fixed interval and may safely overlap with
// webhook processing.
func (s *PaymentService) ExpirePending() {
	cutoff := time.Now().Add(-s.timeout)

	var ids []uuid.UUID
	err := s.db.Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", models.BookingPendingPayment, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		log.Printf("[PAYMENT] Expiry sweep query failed: %v", err)
		return
	}

	for _, id := range ids {
		log.Printf("[PAYMENT] Expiring unpaid booking %s", id)
		s.expireBooking(id)
	}
}
