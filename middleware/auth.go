package middleware

import (
	"net/http"
	"strings"

	"bizdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		if claims.BusinessID != nil {
			c.Set("business_id", *claims.BusinessID)
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// BusinessMiddleware requires the user to be a business_owner or business_staff
// and have a business_id in their token.
func BusinessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Business access required"})
			c.Abort()
			return
		}

		roleStr := role.(string)
		if roleStr != "business_owner" && roleStr != "business_staff" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Business access required"})
			c.Abort()
			return
		}

		if _, exists := c.Get("business_id"); !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "No business associated with this account"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// BusinessOwnerMiddleware requires the user to be specifically a business_owner.
func BusinessOwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "business_owner" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Business owner access required"})
			c.Abort()
			return
		}

		if _, exists := c.Get("business_id"); !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "No business associated with this account"})
			c.Abort()
			return
		}

		c.Next()
	}
}
