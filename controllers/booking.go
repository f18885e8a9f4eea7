// controllers/booking.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"lashstudio-backend/models"
	"lashstudio-backend/services"
	"lashstudio-backend/utils"
)

type BookingController struct {
	DB       *gorm.DB
	Bookings *services.BookingService
}

// CreateBooking reserves slots and starts the payment flow
func (b *BookingController) CreateBooking(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input services.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	clientName := ""
	if err := b.DB.First(&user, "id = ?", clientID).Error; err == nil {
		clientName = user.Name
	}

	booking, paymentURL, err := b.Bookings.Create(clientID, clientName, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, gin.H{
		"booking":    booking,
		"paymentUrl": paymentURL,
	})
}

// CancelBooking cancels the caller's own booking
func (b *BookingController) CancelBooking(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	result, err := b.Bookings.Cancel(bookingID, &clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, result)
}

// BookingStatus returns the lifecycle and payment status of a booking
func (b *BookingController) BookingStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	booking, err := b.Bookings.Status(bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, gin.H{
		"status":        booking.Status,
		"paymentStatus": booking.PaymentStatus,
	})
}

// MyBookings lists the caller's upcoming confirmed bookings
func (b *BookingController) MyBookings(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	bookings, err := b.Bookings.MyBookings(clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, bookings)
}
