package handlers

import (
	"net/http"
	"strings"

	"bizdesk-backend/models"
	"bizdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type BusinessHandler struct {
	DB *gorm.DB
}

// ========== Public Endpoints ==========

func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	id := c.Param("id")

	var business models.Business
	if err := h.DB.Preload("Services", "is_active = ?", true).Preload("Staff").Preload("Staff.User").
		Where("id = ? AND is_active = ?", id, true).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) GetBusinessServices(c *gin.Context) {
	businessID := c.Param("id")

	var business models.Business
	if err := h.DB.Where("id = ?", businessID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	var services []models.Service
	query := h.DB.Where("business_id = ? AND is_active = ?", businessID, true)

	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.Order("name").Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, services)
}

// ========== Admin Endpoints ==========

func (h *BusinessHandler) ListBusinesses(c *gin.Context) {
	var businesses []models.Business
	if err := h.DB.Preload("Owner").Find(&businesses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses"})
		return
	}

	// Batch query: staff counts for all businesses in a single GROUP BY query
	type staffCountResult struct {
		BusinessID uuid.UUID `gorm:"column:business_id"`
		StaffCount int64     `gorm:"column:staff_count"`
	}
	var counts []staffCountResult
	h.DB.Model(&models.BusinessStaff{}).
		Select("business_id, count(*) as staff_count").
		Group("business_id").
		Find(&counts)

	countMap := make(map[uuid.UUID]int64)
	for _, sc := range counts {
		countMap[sc.BusinessID] = sc.StaffCount
	}

	type BusinessWithStats struct {
		models.Business
		StaffCount int64 `json:"staff_count"`
	}

	result := make([]BusinessWithStats, 0, len(businesses))
	for _, b := range businesses {
		result = append(result, BusinessWithStats{Business: b, StaffCount: countMap[b.ID]})
	}

	c.JSON(http.StatusOK, result)
}

func (h *BusinessHandler) CreateBusiness(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		Slug       string `json:"slug" binding:"required"`
		Type       string `json:"type"`
		OwnerEmail string `json:"owner_email" binding:"required,email"`
		OwnerName  string `json:"owner_name"`
		Password   string `json:"password" binding:"required,min=8"`
		Address    string `json:"address"`
		City       string `json:"city"`
		PostCode   string `json:"post_code"`
		Phone      string `json:"phone"`
		Email      string `json:"email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Type == "" {
		req.Type = "salon"
	}

	tx := h.DB.Begin()

	// Create or find the owner user
	var owner models.User
	if err := tx.Where("email = ?", req.OwnerEmail).First(&owner).Error; err != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		owner = models.User{
			ID:       uuid.New(),
			Email:    req.OwnerEmail,
			Password: string(hashedPassword),
			Name:     req.OwnerName,
			Role:     "business_owner",
		}

		if err := tx.Create(&owner).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create owner"})
			return
		}
	}

	business := models.Business{
		ID:       uuid.New(),
		Name:     req.Name,
		Slug:     req.Slug,
		OwnerID:  owner.ID,
		Type:     req.Type,
		Address:  req.Address,
		City:     req.City,
		PostCode: req.PostCode,
		Phone:    req.Phone,
		Email:    req.Email,
		IsActive: true,
	}

	if err := tx.Create(&business).Error; err != nil {
		tx.Rollback()
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			c.JSON(http.StatusConflict, gin.H{"error": "A business with this slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business"})
		return
	}

	// Link the owner to the business
	if err := tx.Model(&owner).Updates(map[string]interface{}{
		"business_id": business.ID,
		"role":        "business_owner",
	}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link owner"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete operation"})
		return
	}

	h.DB.Preload("Owner").First(&business, business.ID)
	c.JSON(http.StatusCreated, business)
}

func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	id := c.Param("id")

	var business models.Business
	if err := h.DB.Where("id = ?", id).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Type     *string `json:"type"`
		Address  *string `json:"address"`
		City     *string `json:"city"`
		PostCode *string `json:"post_code"`
		Phone    *string `json:"phone"`
		Email    *string `json:"email"`
		IsActive *bool   `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostCode != nil {
		updates["post_code"] = *req.PostCode
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.DB.Model(&business).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update business"})
		return
	}

	h.DB.First(&business, business.ID)
	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) DeleteBusiness(c *gin.Context) {
	id := c.Param("id")

	var business models.Business
	if err := h.DB.Where("id = ?", id).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	if err := h.DB.Delete(&business).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete business"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Business deleted"})
}

// ========== Business Portal Endpoints ==========

func (h *BusinessHandler) GetMyBusiness(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var business models.Business
	if err := h.DB.Preload("Staff").Preload("Staff.User").Preload("Services").
		Where("id = ?", businessID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) UpdateMyBusiness(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var business models.Business
	if err := h.DB.Where("id = ?", businessID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Address  *string `json:"address"`
		City     *string `json:"city"`
		PostCode *string `json:"post_code"`
		Phone    *string `json:"phone"`
		Email    *string `json:"email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostCode != nil {
		updates["post_code"] = *req.PostCode
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}

	if err := h.DB.Model(&business).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update business"})
		return
	}

	h.DB.First(&business, business.ID)
	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) GetMyStaff(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var staff []models.BusinessStaff
	if err := h.DB.Preload("User").Where("business_id = ?", businessID).Find(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch staff"})
		return
	}

	c.JSON(http.StatusOK, staff)
}

func (h *BusinessHandler) InviteStaff(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	bID := businessID.(uuid.UUID)

	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Name        string `json:"name"`
		Password    string `json:"password" binding:"required,min=8"`
		Role        string `json:"role"` // manager or staff
		DisplayName string `json:"display_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Role == "" {
		req.Role = "staff"
	}
	if req.Role != "manager" && req.Role != "staff" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be 'manager' or 'staff'"})
		return
	}

	tx := h.DB.Begin()

	// Create or find user
	var user models.User
	if err := tx.Where("email = ?", req.Email).First(&user).Error; err != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		user = models.User{
			ID:         uuid.New(),
			Email:      req.Email,
			Password:   string(hashedPassword),
			Name:       req.Name,
			Role:       "business_staff",
			BusinessID: &bID,
		}

		if err := tx.Create(&user).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
	} else {
		tx.Model(&user).Updates(map[string]interface{}{
			"business_id": bID,
			"role":        "business_staff",
		})
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Name
	}

	staff := models.BusinessStaff{
		BusinessID:  bID,
		UserID:      user.ID,
		Role:        req.Role,
		DisplayName: displayName,
	}

	if err := tx.Create(&staff).Error; err != nil {
		tx.Rollback()
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already staff at a business"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add staff"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete operation"})
		return
	}

	h.DB.Preload("User").First(&staff, staff.ID)
	c.JSON(http.StatusCreated, staff)
}

func (h *BusinessHandler) RemoveStaff(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	staffID := c.Param("id")

	var staff models.BusinessStaff
	if err := h.DB.Where("id = ? AND business_id = ?", staffID, businessID).First(&staff).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff member not found"})
		return
	}

	// Remove business association from user
	h.DB.Model(&models.User{}).Where("id = ?", staff.UserID).Updates(map[string]interface{}{
		"business_id": nil,
		"role":        "customer",
	})

	if err := h.DB.Delete(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove staff"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff member removed"})
}
