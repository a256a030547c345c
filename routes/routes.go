package routes

import (
	"time"

	"bizdesk-backend/handlers"
	"bizdesk-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	businessHandler := &handlers.BusinessHandler{DB: db}
	serviceHandler := &handlers.ServiceHandler{DB: db}
	templateHandler := &handlers.ShiftTemplateHandler{DB: db}
	rosterHandler := &handlers.RosterHandler{DB: db}
	slotHandler := handlers.NewSlotHandler(db)

	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	claimLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		// Public storefront routes
		api.GET("/businesses/:id", businessHandler.GetBusiness)
		api.GET("/businesses/:id/services", businessHandler.GetBusinessServices)
		api.GET("/businesses/:id/slots", slotHandler.GetSlots)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		// User profile
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)

		// Customer booking
		protected.POST("/slots/:id/claim", claimLimiter.Middleware(), slotHandler.ClaimSlot)
	}

	// Business portal routes (require a business role)
	business := api.Group("/business")
	business.Use(middleware.AuthMiddleware())
	business.Use(middleware.BusinessMiddleware())
	{
		business.GET("/me", businessHandler.GetMyBusiness)

		// Service catalog
		business.GET("/services", serviceHandler.GetMyServices)
		business.GET("/services/:id/staff", serviceHandler.GetServiceStaff)

		// Shift templates
		business.GET("/shift-templates", templateHandler.GetMyTemplates)

		// Roster
		business.GET("/roster", rosterHandler.GetRoster)

		// Slots
		business.GET("/slots", slotHandler.GetMySlots)
		business.POST("/slots/generate", slotHandler.GenerateSlots)
		business.POST("/slots", slotHandler.CreateManualSlot)
		business.PUT("/slots/:id/cancel", slotHandler.CancelSlot)
		business.PUT("/slots/:id/block", slotHandler.BlockSlot)
		business.DELETE("/slots/:id", slotHandler.DeleteSlot)
	}

	// Owner-only portal routes
	owner := api.Group("/business")
	owner.Use(middleware.AuthMiddleware())
	owner.Use(middleware.BusinessOwnerMiddleware())
	{
		owner.PUT("/me", businessHandler.UpdateMyBusiness)

		// Staff management
		owner.GET("/staff", businessHandler.GetMyStaff)
		owner.POST("/staff", businessHandler.InviteStaff)
		owner.DELETE("/staff/:id", businessHandler.RemoveStaff)

		// Service management
		owner.POST("/services", serviceHandler.CreateService)
		owner.PUT("/services/:id", serviceHandler.UpdateService)
		owner.DELETE("/services/:id", serviceHandler.DeleteService)
		owner.PUT("/services/:id/staff", serviceHandler.AssignServiceStaff)

		// Shift template management
		owner.POST("/shift-templates", templateHandler.CreateTemplate)
		owner.PUT("/shift-templates/:id", templateHandler.UpdateTemplate)
		owner.DELETE("/shift-templates/:id", templateHandler.DeleteTemplate)

		// Roster management
		owner.POST("/roster", rosterHandler.CreateRosterShift)
		owner.PUT("/roster/:id", rosterHandler.UpdateRosterShift)
		owner.DELETE("/roster/:id", rosterHandler.DeleteRosterShift)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/businesses", businessHandler.ListBusinesses)
		admin.POST("/businesses", businessHandler.CreateBusiness)
		admin.PUT("/businesses/:id", businessHandler.UpdateBusiness)
		admin.DELETE("/businesses/:id", businessHandler.DeleteBusiness)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
