package middleware

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/auth"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier auth.TokenVerifier
	logger   utils.Logger
}

func NewAuthMiddleware(verifier auth.TokenVerifier, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, logger: logger.With("middleware", "auth")}
}

// Identify attaches the caller identity when the request carries a valid
// bearer token. Anonymous and rejected tokens pass through unauthenticated.
func (m *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if identity, err := m.verifier.Verify(c.Request.Context(), token); err == nil {
				setIdentity(c, identity)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) != nil {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "No autenticado")
			return
		}

		identity, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			m.logger.WarnContext(c.Request.Context(), "Token rejected",
				"error", err,
				"path", c.Request.URL.Path,
				"request_id", c.GetHeader(RequestIDHeader),
			)
			abort(c, http.StatusUnauthorized, "No autenticado")
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

func setIdentity(c *gin.Context, identity *auth.Identity) {
	c.Set(ContextUserID, identity.UserID)
	c.Set(ContextUserRole, identity.Role)
	c.Set(ContextIdentity, identity)
}

// RequireRoles lets the request through when the caller holds one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "Acceso denegado")
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
