// Package middleware holds the gin middleware chain of the API.
package middleware

import (
	"github.com/SAP-F-2025/lms-service/internal/auth"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextIdentity  = "identity"
	ContextRequestID = "request_id"

	RequestIDHeader = "X-Request-ID"
)

// CurrentUserID returns the authenticated user id, or 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextUserID); ok {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}

func CurrentRole(c *gin.Context) models.UserRole {
	if role, ok := c.Get(ContextUserRole); ok {
		if v, ok := role.(models.UserRole); ok {
			return v
		}
	}
	return ""
}

func CurrentIdentity(c *gin.Context) *auth.Identity {
	if identity, ok := c.Get(ContextIdentity); ok {
		if v, ok := identity.(*auth.Identity); ok {
			return v
		}
	}
	return nil
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
