// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"lashstudio-backend/models"
	"lashstudio-backend/utils"
)

type ServiceController struct {
	DB *gorm.DB
}

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,min=0"`
	Duration    int     `json:"duration" binding:"min=0"` // in minutes
	SortOrder   int     `json:"sortOrder"`
	ServiceType string  `json:"serviceType"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Duration    *int     `json:"duration"`
	SortOrder   *int     `json:"sortOrder"`
	IsActive    *bool    `json:"isActive"`
}

// ListServices retrieves active main services (addons hidden)
func (s *ServiceController) ListServices(c *gin.Context) {
	var services []models.Service
	err := s.DB.Where("is_active = ? AND service_type = ?", true, models.ServiceTypeMain).
		Order("sort_order ASC").Find(&services).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	utils.Respond(c, http.StatusOK, services)
}

// AddonInfo returns the active addon service, if any
func (s *ServiceController) AddonInfo(c *gin.Context) {
	var addon models.Service
	err := s.DB.Where("service_type = ? AND is_active = ?", models.ServiceTypeAddon, true).
		Order("sort_order ASC").First(&addon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Respond(c, http.StatusOK, nil)
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	utils.Respond(c, http.StatusOK, gin.H{
		"serviceId": addon.ID,
		"name":      addon.Name,
		"price":     addon.Price,
	})
}

// ListAllServices retrieves every service including inactive (admin)
func (s *ServiceController) ListAllServices(c *gin.Context) {
	var services []models.Service
	if err := s.DB.Order("sort_order ASC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	utils.Respond(c, http.StatusOK, services)
}

// CreateService creates a new service (admin)
func (s *ServiceController) CreateService(c *gin.Context) {
	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	serviceType := input.ServiceType
	if serviceType == "" {
		serviceType = models.ServiceTypeMain
	}
	if serviceType != models.ServiceTypeMain && serviceType != models.ServiceTypeAddon {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service type")
		return
	}

	service := models.Service{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Duration:    input.Duration,
		SortOrder:   input.SortOrder,
		ServiceType: serviceType,
		IsActive:    true,
	}

	if err := s.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	utils.Respond(c, http.StatusCreated, service)
}

// UpdateService updates an existing service (admin)
func (s *ServiceController) UpdateService(c *gin.Context) {
	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.Service
	if err := s.DB.First(&service, "id = ?", serviceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Update fields if provided
	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		service.Price = *input.Price
	}
	if input.Duration != nil {
		service.Duration = *input.Duration
	}
	if input.SortOrder != nil {
		service.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := s.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	utils.Respond(c, http.StatusOK, service)
}
