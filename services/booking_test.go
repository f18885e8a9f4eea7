package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lashstudio-backend/models"
)

func TestCreateBookingClaimsConsecutiveSlots(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 120)
	date := dateFromNow(10)
	createTestSlots(t, db, date, 10, 11, 12)

	detail, paymentURL, err := svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.test/checkout", paymentURL)
	assert.Equal(t, models.BookingPendingPayment, detail.Status)
	assert.Equal(t, models.PaymentPending, detail.PaymentStatus)
	assert.Equal(t, "12:00", detail.EndTime)
	assert.Equal(t, "pay_1", detail.PaymentID)

	// 10-11 and 11-12 are claimed, 12-13 stays free
	var slots []models.Slot
	require.NoError(t, db.Where("date = ?", date).Order("start_time ASC").Find(&slots).Error)
	assert.True(t, slots[0].IsBooked)
	assert.True(t, slots[1].IsBooked)
	assert.False(t, slots[2].IsBooked)

	// booked ⇔ owner set, and the owner is this booking
	for _, slot := range slots {
		if slot.IsBooked {
			require.NotNil(t, slot.BookingID)
			assert.Equal(t, detail.ID, *slot.BookingID)
		} else {
			assert.Nil(t, slot.BookingID)
		}
	}
}

func TestCreateBookingAddsAddonPrice(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	createTestAddon(t, db)
	date := dateFromNow(10)
	createTestSlots(t, db, date, 10)

	detail, _, err := svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
		WithAddon: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, detail.TotalPrice)
	assert.True(t, detail.WithAddon)
}

func TestCreateBookingValidation(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())
	service := createTestService(t, db, 60)

	_, _, err := svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      "23-08-2026",
		StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      dateFromNow(5),
		StartTime: "25:99",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBookingNotEnoughSlots(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 120)
	date := dateFromNow(10)
	createTestSlots(t, db, date, 10) // one slot, two needed

	_, _, err := svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingConflictOnBookedSlot(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	date := dateFromNow(10)
	createTestSlots(t, db, date, 10)

	first, _, err := svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	require.NoError(t, err)
	require.NotNil(t, first)

	// Second attempt on the same slot loses
	_, _, err = svc.Create(newClientID(), "Bella", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestClaimSlotExactlyOneWinner(t *testing.T) {
	db := setupTestDB(t)
	date := dateFromNow(5)
	slots := createTestSlots(t, db, date, 10)

	winner := newClientID()
	loser := newClientID()

	claimed, err := ClaimSlot(db, slots[0].ID, winner)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = ClaimSlot(db, slots[0].ID, loser)
	require.NoError(t, err)
	assert.False(t, claimed)

	var slot models.Slot
	require.NoError(t, db.First(&slot, "id = ?", slots[0].ID).Error)
	require.NotNil(t, slot.BookingID)
	assert.Equal(t, winner, *slot.BookingID)
}

func TestCreateBookingGatewayFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	stub.failPayments = true
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 120)
	date := dateFromNow(10)
	createTestSlots(t, db, date, 10, 11)

	_, _, err := svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrGateway)

	// Compensating rollback: the booking is expired and every claimed
	// slot is back in the free pool
	var booking models.Booking
	require.NoError(t, db.First(&booking).Error)
	assert.Equal(t, models.BookingExpired, booking.Status)
	assert.Equal(t, models.PaymentNone, booking.PaymentStatus)

	var bookedCount int64
	db.Model(&models.Slot{}).Where("is_booked = ?", true).Count(&bookedCount)
	assert.Zero(t, bookedCount)
}

func TestCancelReleasesSlots(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 120)
	date := dateFromNow(10)
	createTestSlots(t, db, date, 10, 11)

	clientID := newClientID()
	detail, _, err := svc.Create(clientID, "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	require.NoError(t, err)

	result, err := svc.Cancel(detail.ID, &clientID)
	require.NoError(t, err)
	assert.Equal(t, "Booking cancelled", result.Message)

	var booking models.Booking
	require.NoError(t, db.First(&booking, "id = ?", detail.ID).Error)
	assert.Equal(t, models.BookingCancelled, booking.Status)
	assert.NotNil(t, booking.CancelledAt)

	var bookedCount int64
	db.Model(&models.Slot{}).Where("is_booked = ?", true).Count(&bookedCount)
	assert.Zero(t, bookedCount)
}

func TestCancelRequiresOwnership(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	date := dateFromNow(10)
	createTestSlots(t, db, date, 10)

	owner := newClientID()
	detail, _, err := svc.Create(owner, "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	require.NoError(t, err)

	stranger := newClientID()
	_, err = svc.Cancel(detail.ID, &stranger)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientCancelRefundsOutside24h(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	date := dateFromNow(3) // well outside 24h
	createTestSlots(t, db, date, 10)

	clientID := newClientID()
	detail, _, err := svc.Create(clientID, "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	require.NoError(t, err)
	confirmPaidForTest(t, db, detail.ID)

	result, err := svc.Cancel(detail.ID, &clientID)
	require.NoError(t, err)
	assert.Equal(t, "Prepayment refunded", result.RefundInfo)
	assert.Equal(t, 1, stub.refunds)

	var booking models.Booking
	require.NoError(t, db.First(&booking, "id = ?", detail.ID).Error)
	assert.Equal(t, models.PaymentRefunded, booking.PaymentStatus)
}

func TestClientCancelForfeitsWithin24h(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	date := dateFromNow(0) // today: start is within 24h
	createTestSlots(t, db, date, 23)

	clientID := newClientID()
	detail, _, err := svc.Create(clientID, "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "23:00",
	})
	require.NoError(t, err)
	confirmPaidForTest(t, db, detail.ID)

	result, err := svc.Cancel(detail.ID, &clientID)
	require.NoError(t, err)
	assert.Contains(t, result.RefundInfo, "forfeited")
	assert.Zero(t, stub.refunds)
}

func TestOperatorCancelAlwaysRefundsPaid(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	date := dateFromNow(0)
	createTestSlots(t, db, date, 23)

	detail, _, err := svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "23:00",
	})
	require.NoError(t, err)
	confirmPaidForTest(t, db, detail.ID)

	result, err := svc.Cancel(detail.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Prepayment refunded", result.RefundInfo)
	assert.Equal(t, 1, stub.refunds)
}

func TestCancelProceedsWhenRefundFails(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	stub.failRefunds = true
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	date := dateFromNow(5)
	createTestSlots(t, db, date, 10)

	clientID := newClientID()
	detail, _, err := svc.Create(clientID, "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	require.NoError(t, err)
	confirmPaidForTest(t, db, detail.ID)

	result, err := svc.Cancel(detail.ID, &clientID)
	require.NoError(t, err)
	assert.Contains(t, result.RefundInfo, "manually")

	var booking models.Booking
	require.NoError(t, db.First(&booking, "id = ?", detail.ID).Error)
	assert.Equal(t, models.BookingCancelled, booking.Status)
}

func TestUnpaidCancelHasNoRefundInfo(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	date := dateFromNow(5)
	createTestSlots(t, db, date, 10)

	clientID := newClientID()
	detail, _, err := svc.Create(clientID, "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	require.NoError(t, err)

	result, err := svc.Cancel(detail.ID, &clientID)
	require.NoError(t, err)
	assert.Empty(t, result.RefundInfo)
	assert.Zero(t, stub.refunds)
}

func TestBookingStatus(t *testing.T) {
	db := setupTestDB(t)
	stub := newGatewayStub(t)
	svc := NewBookingService(db, stub.gateway(), testNotifier())

	service := createTestService(t, db, 60)
	date := dateFromNow(5)
	createTestSlots(t, db, date, 10)

	detail, _, err := svc.Create(newClientID(), "Anna", CreateBookingInput{
		ServiceID: service.ID,
		Date:      date,
		StartTime: "10:00",
	})
	require.NoError(t, err)

	booking, err := svc.Status(detail.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPendingPayment, booking.Status)

	_, err = svc.Status(newClientID())
	assert.ErrorIs(t, err, ErrNotFound)
}
