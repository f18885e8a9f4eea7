// controllers/availability.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lashstudio-backend/services"
	"lashstudio-backend/utils"
)

type AvailabilityController struct {
	Availability *services.AvailabilityService
}

// AvailableDates lists future dates with enough consecutive free slots
func (a *AvailabilityController) AvailableDates(c *gin.Context) {
	var serviceID *uuid.UUID
	if raw := c.Query("serviceId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
			return
		}
		serviceID = &id
	}

	dates, err := a.Availability.AvailableDates(serviceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, dates)
}

// AvailableTimes lists offerable time blocks for a service on a date
func (a *AvailabilityController) AvailableTimes(c *gin.Context) {
	date := c.Query("date")
	serviceID, err := uuid.Parse(c.Query("serviceId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	result, err := a.Availability.AvailableTimes(date, serviceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, result)
}

// Calendar returns per-day slot stats for a month
func (a *AvailabilityController) Calendar(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid year")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid month")
		return
	}

	var serviceID *uuid.UUID
	if raw := c.Query("serviceId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
			return
		}
		serviceID = &id
	}

	days, err := a.Availability.Calendar(year, month, serviceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, days)
}
