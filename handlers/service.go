package handlers

import (
	"net/http"

	"bizdesk-backend/models"
	"bizdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceHandler struct {
	DB *gorm.DB
}

func (h *ServiceHandler) GetMyServices(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var services []models.Service
	if err := h.DB.Where("business_id = ?", businessID).Order("name").Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) CreateService(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	bID := businessID.(uuid.UUID)

	var req struct {
		Name            string  `json:"name" binding:"required"`
		Description     string  `json:"description"`
		DurationMinutes int     `json:"duration_minutes" binding:"required,gt=0"`
		Price           float64 `json:"price"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	service := models.Service{
		ID:              uuid.New(),
		BusinessID:      bID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        true,
	}

	if err := h.DB.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, service)
}

func (h *ServiceHandler) UpdateService(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	serviceID := c.Param("id")

	var service models.Service
	if err := h.DB.Where("id = ? AND business_id = ?", serviceID, businessID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var req struct {
		Name            *string  `json:"name"`
		Description     *string  `json:"description"`
		DurationMinutes *int     `json:"duration_minutes"`
		Price           *float64 `json:"price"`
		IsActive        *bool    `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be greater than zero"})
		return
	}

	// Changing duration would invalidate the duration of already generated
	// slots, so it is only allowed while no non-blocked slots reference
	// this service.
	if req.DurationMinutes != nil && *req.DurationMinutes != service.DurationMinutes {
		var count int64
		h.DB.Model(&models.Slot{}).
			Where("service_id = ? AND status != ?", service.ID, models.SlotStatusBlocked).
			Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Cannot change duration while slots exist for this service; delete or block them first",
			})
			return
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.DB.Model(&service).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
		return
	}

	h.DB.First(&service, service.ID)
	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) DeleteService(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	serviceID := c.Param("id")

	var service models.Service
	if err := h.DB.Where("id = ? AND business_id = ?", serviceID, businessID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var count int64
	h.DB.Model(&models.Slot{}).Where("service_id = ?", service.ID).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a service that has slots; deactivate it instead"})
		return
	}

	h.DB.Where("service_id = ?", service.ID).Delete(&models.StaffService{})
	if err := h.DB.Delete(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}

// GetServiceStaff lists the staff members qualified for a service.
func (h *ServiceHandler) GetServiceStaff(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	serviceID := c.Param("id")

	var service models.Service
	if err := h.DB.Where("id = ? AND business_id = ?", serviceID, businessID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var staff []models.BusinessStaff
	if err := h.DB.Preload("User").
		Joins("JOIN staff_services ON staff_services.staff_id = business_staffs.id").
		Where("staff_services.service_id = ?", service.ID).
		Find(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch staff"})
		return
	}

	c.JSON(http.StatusOK, staff)
}

// AssignServiceStaff replaces the set of staff members qualified for a
// service with the given list.
func (h *ServiceHandler) AssignServiceStaff(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	serviceID := c.Param("id")

	var service models.Service
	if err := h.DB.Where("id = ? AND business_id = ?", serviceID, businessID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var req struct {
		StaffIDs []uuid.UUID `json:"staff_ids" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	// All listed staff must belong to this business
	for _, staffID := range req.StaffIDs {
		var staff models.BusinessStaff
		if err := h.DB.Where("id = ? AND business_id = ?", staffID, businessID).First(&staff).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Staff member " + staffID.String() + " does not belong to this business"})
			return
		}
	}

	tx := h.DB.Begin()
	if err := tx.Where("service_id = ?", service.ID).Delete(&models.StaffService{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update staff assignments"})
		return
	}
	for _, staffID := range req.StaffIDs {
		ss := models.StaffService{
			ID:        uuid.New(),
			StaffID:   staffID,
			ServiceID: service.ID,
		}
		if err := tx.Create(&ss).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update staff assignments"})
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete operation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff assignments updated", "staff_ids": req.StaffIDs})
}
