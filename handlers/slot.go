package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bizdesk-backend/models"
	"bizdesk-backend/scheduling"
	"bizdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotHandler struct {
	DB        *gorm.DB
	Generator *scheduling.Generator
}

func NewSlotHandler(db *gorm.DB) *SlotHandler {
	return &SlotHandler{
		DB:        db,
		Generator: scheduling.NewGenerator(scheduling.NewGormStore(db)),
	}
}

// GenerateSlots runs the auto-generate batch for the dashboard.
func (h *SlotHandler) GenerateSlots(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	bID := businessID.(uuid.UUID)

	var req struct {
		StartDate string     `json:"start_date" binding:"required"`
		EndDate   string     `json:"end_date" binding:"required"`
		StaffID   *uuid.UUID `json:"staff_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	from, err := parseDateParam(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
		return
	}
	to, err := parseDateParam(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
		return
	}

	result, err := h.Generator.Generate(c.Request.Context(), scheduling.GenerateRequest{
		BusinessID: bID,
		StaffID:    req.StaffID,
		From:       from,
		To:         to,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrInvalidRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
		case errors.Is(err, scheduling.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Slot generation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateManualSlot places one slot by hand; its end time is derived from
// the service duration.
func (h *SlotHandler) CreateManualSlot(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	bID := businessID.(uuid.UUID)

	var req struct {
		StaffID   uuid.UUID `json:"staff_id" binding:"required"`
		ServiceID uuid.UUID `json:"service_id" binding:"required"`
		StartTime time.Time `json:"start_time" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	slot, err := h.Generator.CreateManual(c.Request.Context(), scheduling.ManualRequest{
		BusinessID: bID,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		StartTime:  req.StartTime,
	})
	if err != nil {
		var validationErr *scheduling.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
		case errors.Is(err, scheduling.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create slot"})
		}
		return
	}

	var created models.Slot
	h.DB.Preload("Staff").Preload("Staff.User").Preload("Service").First(&created, slot.ID)
	c.JSON(http.StatusCreated, created)
}

// GetSlots is the shared query endpoint: owners see every status, customers
// only what is open for booking.
func (h *SlotHandler) GetSlots(c *gin.Context) {
	businessID := c.Param("id")

	var business models.Business
	if err := h.DB.Where("id = ?", businessID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	h.querySlots(c, business.ID, true)
}

// GetMySlots lists the business portal's own slots with full status filtering.
func (h *SlotHandler) GetMySlots(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	h.querySlots(c, businessID.(uuid.UUID), false)
}

func (h *SlotHandler) querySlots(c *gin.Context, businessID uuid.UUID, publicOnly bool) {
	query := h.DB.Preload("Staff").Preload("Staff.User").Preload("Service").
		Where("business_id = ?", businessID)

	if from := c.Query("start_date"); from != "" {
		date, err := parseDateParam(from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
			return
		}
		query = query.Where("start_time >= ?", date)
	}
	if to := c.Query("end_date"); to != "" {
		date, err := parseDateParam(to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
			return
		}
		// end_date is inclusive: include everything before the next day
		query = query.Where("start_time < ?", date.AddDate(0, 0, 1))
	}
	if staffID := c.Query("staff_id"); staffID != "" {
		query = query.Where("staff_id = ?", staffID)
	}
	if serviceID := c.Query("service_id"); serviceID != "" {
		query = query.Where("service_id = ?", serviceID)
	}
	if publicOnly {
		query = query.Where("status = ?", models.SlotStatusAvailable)
	} else if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	// Deterministic ordering for pagination and tests
	var slots []models.Slot
	if err := query.Order("start_time, staff_id, id").Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}

// ClaimSlot books an available slot. The conditional update closes the
// booking race at the storage layer: of N concurrent claims exactly one
// flips the row, the rest see zero rows affected. A staff member must never
// hold two overlapping booked slots, so after winning the row the claim
// locks every overlapping slot of the same staff and rolls back if one of
// them is already booked — claiming both sides of a flagged conflict pair
// books only the first.
func (h *SlotHandler) ClaimSlot(c *gin.Context) {
	slotID := c.Param("id")

	tx := h.DB.Begin()
	res := tx.Model(&models.Slot{}).
		Where("id = ? AND status = ?", slotID, models.SlotStatusAvailable).
		Update("status", models.SlotStatusBooked)
	if res.Error != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim slot"})
		return
	}

	if res.RowsAffected == 0 {
		tx.Rollback()
		var slot models.Slot
		if err := h.DB.Where("id = ?", slotID).First(&slot).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "Slot is already booked"})
		return
	}

	var slot models.Slot
	if err := tx.Where("id = ?", slotID).First(&slot).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim slot"})
		return
	}

	// No-op update takes row locks on the overlapping slots, serializing
	// concurrent claims of a conflict pair before the booked check.
	if err := tx.Model(&models.Slot{}).
		Where("staff_id = ? AND id <> ? AND start_time < ? AND end_time > ?",
			slot.StaffID, slot.ID, slot.EndTime, slot.StartTime).
		UpdateColumn("status", gorm.Expr("status")).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim slot"})
		return
	}

	var overlappingBooked int64
	if err := tx.Model(&models.Slot{}).
		Where("staff_id = ? AND id <> ? AND status = ? AND start_time < ? AND end_time > ?",
			slot.StaffID, slot.ID, models.SlotStatusBooked, slot.EndTime, slot.StartTime).
		Count(&overlappingBooked).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim slot"})
		return
	}
	if overlappingBooked > 0 {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "An overlapping slot for this staff member is already booked"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim slot"})
		return
	}

	h.DB.Preload("Staff").Preload("Staff.User").Preload("Service").First(&slot, "id = ?", slotID)
	c.JSON(http.StatusOK, slot)
}

// CancelSlot releases a booked or blocked slot back to available.
func (h *SlotHandler) CancelSlot(c *gin.Context) {
	h.transitionSlot(c, models.SlotStatusAvailable)
}

// BlockSlot takes a slot out of circulation, e.g. to resolve a flagged
// conflict between two overlapping slots.
func (h *SlotHandler) BlockSlot(c *gin.Context) {
	h.transitionSlot(c, models.SlotStatusBlocked)
}

func (h *SlotHandler) transitionSlot(c *gin.Context, to models.SlotStatus) {
	businessID, _ := c.Get("business_id")
	slotID := c.Param("id")

	var slot models.Slot
	if err := h.DB.Where("id = ? AND business_id = ?", slotID, businessID).First(&slot).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}

	if !models.IsValidSlotTransition(slot.Status, to) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid status transition from '%s' to '%s'", slot.Status, to),
		})
		return
	}

	// Guard against a concurrent claim changing the status underneath us
	res := h.DB.Model(&models.Slot{}).
		Where("id = ? AND status = ?", slot.ID, slot.Status).
		Update("status", to)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Slot status changed, please retry"})
		return
	}

	h.DB.Preload("Staff").Preload("Staff.User").Preload("Service").First(&slot, slot.ID)
	c.JSON(http.StatusOK, slot)
}

// DeleteSlot removes an available slot. Editing a slot's time, staff or
// service is delete-and-recreate; there is deliberately no in-place edit.
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	slotID := c.Param("id")

	var slot models.Slot
	if err := h.DB.Where("id = ? AND business_id = ?", slotID, businessID).First(&slot).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}

	if slot.Status == models.SlotStatusBooked {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a booked slot; cancel it first"})
		return
	}

	tx := h.DB.Begin()
	// Drop this slot from the conflict lists of its counterparts
	for _, otherID := range slot.ConflictingSlotIDs {
		var other models.Slot
		if err := tx.Where("id = ?", otherID).First(&other).Error; err != nil {
			continue
		}
		remaining := make(models.UUIDList, 0, len(other.ConflictingSlotIDs))
		for _, id := range other.ConflictingSlotIDs {
			if id != slot.ID {
				remaining = append(remaining, id)
			}
		}
		if err := tx.Model(&other).Update("conflicting_slot_ids", remaining).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete slot"})
			return
		}
	}
	if err := tx.Delete(&slot).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete slot"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete operation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted"})
}
