package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking statuses. Cancelled and expired are terminal.
const (
	BookingPendingPayment = "pending_payment"
	BookingConfirmed      = "confirmed"
	BookingCancelled      = "cancelled"
	BookingExpired        = "expired"
)

// Payment statuses.
const (
	PaymentNone     = "none"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Booking spans ceil(duration/60) consecutive slots. The owned slots of
// a non-terminal booking form one contiguous run covering exactly
// [StartTime, EndTime) on Date.
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index;not null" json:"serviceId"`
	ClientID   uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	ClientName string    `json:"clientName"`

	Date      string `gorm:"type:varchar(10);index;not null" json:"date"`
	StartTime string `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime   string `gorm:"type:varchar(5);not null" json:"endTime"`
	WithAddon bool   `gorm:"default:false" json:"withAddon"`

	Status        string  `gorm:"type:varchar(20);index;not null" json:"status"`
	PaymentStatus string  `gorm:"type:varchar(10);index;not null;default:'none'" json:"paymentStatus"`
	PaymentID     string  `json:"paymentId,omitempty"`
	PrepaidAmount float64 `gorm:"type:decimal(10,2);default:0.0" json:"prepaidAmount"`

	CreatedAt   time.Time  `json:"createdAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
