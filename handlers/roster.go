package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bizdesk-backend/models"
	"bizdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RosterHandler struct {
	DB *gorm.DB
}

// parseDateParam parses an ISO calendar date ("2006-01-02") query or body value.
func parseDateParam(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func (h *RosterHandler) GetRoster(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	query := h.DB.Preload("Staff").Preload("Staff.User").Preload("Template").Preload("Template.Breaks").
		Where("business_id = ?", businessID)

	if from := c.Query("start_date"); from != "" {
		date, err := parseDateParam(from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
			return
		}
		query = query.Where("date >= ?", date)
	}
	if to := c.Query("end_date"); to != "" {
		date, err := parseDateParam(to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
			return
		}
		query = query.Where("date <= ?", date)
	}
	if staffID := c.Query("staff_id"); staffID != "" {
		query = query.Where("staff_id = ?", staffID)
	}

	var rosters []models.RosterShift
	if err := query.Order("date, staff_id").Find(&rosters).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roster"})
		return
	}

	c.JSON(http.StatusOK, rosters)
}

func (h *RosterHandler) CreateRosterShift(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	bID := businessID.(uuid.UUID)

	var req struct {
		StaffID    uuid.UUID `json:"staff_id" binding:"required"`
		TemplateID uuid.UUID `json:"template_id" binding:"required"`
		Date       string    `json:"date" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	var staff models.BusinessStaff
	if err := h.DB.Where("id = ? AND business_id = ?", req.StaffID, bID).First(&staff).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff member not found"})
		return
	}

	var template models.ShiftTemplate
	if err := h.DB.Where("id = ? AND business_id = ?", req.TemplateID, bID).First(&template).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shift template not found"})
		return
	}
	if !template.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot roster an inactive shift template"})
		return
	}

	// A template scoped to specific weekdays only applies on those days
	if len(template.DaysOfWeek) > 0 {
		weekday := int(date.Weekday())
		applies := false
		for _, d := range template.DaysOfWeek {
			if d == weekday {
				applies = true
				break
			}
		}
		if !applies {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Template %q does not apply on %s", template.Name, date.Weekday()),
			})
			return
		}
	}

	roster := models.RosterShift{
		ID:         uuid.New(),
		BusinessID: bID,
		StaffID:    req.StaffID,
		TemplateID: req.TemplateID,
		Date:       date,
		Status:     models.RosterStatusScheduled,
	}

	if err := h.DB.Create(&roster).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			c.JSON(http.StatusConflict, gin.H{"error": "Staff member already has a shift on that date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create roster entry"})
		return
	}

	h.DB.Preload("Staff").Preload("Template").Preload("Template.Breaks").First(&roster, roster.ID)
	c.JSON(http.StatusCreated, roster)
}

func (h *RosterHandler) UpdateRosterShift(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	rosterID := c.Param("id")

	var roster models.RosterShift
	if err := h.DB.Where("id = ? AND business_id = ?", rosterID, businessID).First(&roster).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Roster entry not found"})
		return
	}

	var req struct {
		TemplateID *uuid.UUID           `json:"template_id"`
		Status     *models.RosterStatus `json:"status"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.TemplateID != nil {
		var template models.ShiftTemplate
		if err := h.DB.Where("id = ? AND business_id = ?", req.TemplateID, businessID).First(&template).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shift template not found"})
			return
		}
		if !template.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot roster an inactive shift template"})
			return
		}
		roster.TemplateID = *req.TemplateID
	}

	if req.Status != nil && *req.Status != roster.Status {
		if !models.IsValidRosterTransition(roster.Status, *req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid status transition from '%s' to '%s'", roster.Status, *req.Status),
			})
			return
		}
		roster.Status = *req.Status
	}

	if err := h.DB.Save(&roster).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update roster entry"})
		return
	}

	h.DB.Preload("Staff").Preload("Template").Preload("Template.Breaks").First(&roster, roster.ID)
	c.JSON(http.StatusOK, roster)
}

func (h *RosterHandler) DeleteRosterShift(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	rosterID := c.Param("id")

	var roster models.RosterShift
	if err := h.DB.Where("id = ? AND business_id = ?", rosterID, businessID).First(&roster).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Roster entry not found"})
		return
	}

	// Booked slots keep their appointments even if the roster entry goes away;
	// the shift back-reference is display-only.
	var count int64
	h.DB.Model(&models.Slot{}).
		Where("shift_id = ? AND status = ?", roster.ID, models.SlotStatusBooked).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cannot delete a roster entry with booked slots; cancel the bookings first",
		})
		return
	}

	tx := h.DB.Begin()
	if err := tx.Where("shift_id = ? AND status = ?", roster.ID, models.SlotStatusAvailable).
		Delete(&models.Slot{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete roster entry"})
		return
	}
	if err := tx.Delete(&roster).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete roster entry"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete operation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Roster entry deleted"})
}
