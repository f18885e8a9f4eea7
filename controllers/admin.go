// controllers/admin.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lashstudio-backend/services"
	"lashstudio-backend/utils"
)

type AdminController struct {
	Slots    *services.SlotService
	Bookings *services.BookingService
}

type CreateSlotsInput struct {
	Date  string              `json:"date" binding:"required"`
	Slots []services.SlotTime `json:"slots" binding:"required"`
}

type OpenDayInput struct {
	Date string `json:"date" binding:"required"`
}

// ListSlots lists all slots for a date, booked ones included
func (a *AdminController) ListSlots(c *gin.Context) {
	date := c.Query("date")
	if !utils.ValidDate(date) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format")
		return
	}

	slots, err := a.Slots.List(date)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve slots")
		return
	}

	utils.Respond(c, http.StatusOK, slots)
}

// CreateSlots inserts explicit slots for a date
func (a *AdminController) CreateSlots(c *gin.Context) {
	var input CreateSlotsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	slots, err := a.Slots.Create(input.Date, input.Slots)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, slots)
}

// OpenDay creates the working day's one-hour slots, idempotently
func (a *AdminController) OpenDay(c *gin.Context) {
	var input OpenDayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	slots, err := a.Slots.OpenDay(input.Date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, slots)
}

// DeleteSlot removes an unbooked slot
func (a *AdminController) DeleteSlot(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid slot ID format")
		return
	}

	if err := a.Slots.Delete(slotID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, gin.H{"message": "Slot deleted"})
}

// ListBookings lists confirmed bookings by date, range or upcoming
func (a *AdminController) ListBookings(c *gin.Context) {
	bookings, err := a.Bookings.ListBookings(c.Query("date"), c.Query("from"), c.Query("to"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, bookings)
}

// CancelBooking is the operator-initiated cancellation
func (a *AdminController) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	result, err := a.Bookings.Cancel(bookingID, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, result)
}
