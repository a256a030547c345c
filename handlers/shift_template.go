package handlers

import (
	"net/http"

	"bizdesk-backend/models"
	"bizdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftTemplateHandler struct {
	DB *gorm.DB
}

type shiftBreakRequest struct {
	StartTime string           `json:"start_time" binding:"required"`
	EndTime   string           `json:"end_time" binding:"required"`
	Type      models.BreakType `json:"type"`
}

func (h *ShiftTemplateHandler) GetMyTemplates(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var templates []models.ShiftTemplate
	query := h.DB.Preload("Breaks").Where("business_id = ?", businessID)
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name").Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shift templates"})
		return
	}

	c.JSON(http.StatusOK, templates)
}

func (h *ShiftTemplateHandler) CreateTemplate(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	bID := businessID.(uuid.UUID)

	var req struct {
		Name       string              `json:"name" binding:"required"`
		StartTime  string              `json:"start_time" binding:"required"`
		EndTime    string              `json:"end_time" binding:"required"`
		DaysOfWeek []int               `json:"days_of_week"`
		Color      string              `json:"color"`
		Type       models.ShiftType    `json:"type"`
		Breaks     []shiftBreakRequest `json:"breaks"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Type == "" {
		req.Type = models.ShiftTypeRegular
	}

	template := models.ShiftTemplate{
		ID:         uuid.New(),
		BusinessID: bID,
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		DaysOfWeek: req.DaysOfWeek,
		Color:      req.Color,
		Type:       req.Type,
		IsActive:   true,
	}
	for _, br := range req.Breaks {
		breakType := br.Type
		if breakType == "" {
			breakType = models.BreakTypeRest
		}
		template.Breaks = append(template.Breaks, models.ShiftBreak{
			ID:         uuid.New(),
			TemplateID: template.ID,
			StartTime:  br.StartTime,
			EndTime:    br.EndTime,
			Type:       breakType,
		})
	}

	// Validate recomputes every break's duration from its times
	if err := template.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.Create(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shift template"})
		return
	}

	c.JSON(http.StatusCreated, template)
}

func (h *ShiftTemplateHandler) UpdateTemplate(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	templateID := c.Param("id")

	var template models.ShiftTemplate
	if err := h.DB.Preload("Breaks").Where("id = ? AND business_id = ?", templateID, businessID).First(&template).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shift template not found"})
		return
	}

	var req struct {
		Name       *string              `json:"name"`
		StartTime  *string              `json:"start_time"`
		EndTime    *string              `json:"end_time"`
		DaysOfWeek *[]int               `json:"days_of_week"`
		Color      *string              `json:"color"`
		Type       *models.ShiftType    `json:"type"`
		IsActive   *bool                `json:"is_active"`
		Breaks     *[]shiftBreakRequest `json:"breaks"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.StartTime != nil {
		template.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		template.EndTime = *req.EndTime
	}
	if req.DaysOfWeek != nil {
		template.DaysOfWeek = *req.DaysOfWeek
	}
	if req.Color != nil {
		template.Color = *req.Color
	}
	if req.Type != nil {
		template.Type = *req.Type
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	replaceBreaks := req.Breaks != nil
	if replaceBreaks {
		template.Breaks = nil
		for _, br := range *req.Breaks {
			breakType := br.Type
			if breakType == "" {
				breakType = models.BreakTypeRest
			}
			template.Breaks = append(template.Breaks, models.ShiftBreak{
				ID:         uuid.New(),
				TemplateID: template.ID,
				StartTime:  br.StartTime,
				EndTime:    br.EndTime,
				Type:       breakType,
			})
		}
	}

	// The full template is re-validated on every edit, so a window change
	// cannot orphan an existing break outside the new bounds.
	if err := template.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := h.DB.Begin()
	if replaceBreaks {
		if err := tx.Where("template_id = ?", template.ID).Delete(&models.ShiftBreak{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update breaks"})
			return
		}
	}
	if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&template).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shift template"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete operation"})
		return
	}

	h.DB.Preload("Breaks").First(&template, template.ID)
	c.JSON(http.StatusOK, template)
}

func (h *ShiftTemplateHandler) DeleteTemplate(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	templateID := c.Param("id")

	var template models.ShiftTemplate
	if err := h.DB.Where("id = ? AND business_id = ?", templateID, businessID).First(&template).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shift template not found"})
		return
	}

	// Templates stay soft-disabled while rosters reference them
	var count int64
	h.DB.Model(&models.RosterShift{}).Where("template_id = ?", template.ID).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cannot delete a template referenced by roster entries; deactivate it instead",
		})
		return
	}

	tx := h.DB.Begin()
	if err := tx.Where("template_id = ?", template.ID).Delete(&models.ShiftBreak{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete shift template"})
		return
	}
	if err := tx.Delete(&template).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete shift template"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete operation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Shift template deleted"})
}
