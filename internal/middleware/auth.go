package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"station_chat/internal/service"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

// Ключи контекста, которые выставляет RequireAdmin
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextUserRole = "user_role"
)

type AuthMiddleware struct {
	authService service.AdminAuthService
	log         logger.Logger
}

func NewAuthMiddleware(authService service.AdminAuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
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

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			m.log.Warn("Admin token rejected", "error", err, "ip", c.ClientIP())
			c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// ActorFromContext собирает автора действия модерации из claims
func ActorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{
		Name: c.GetString(ContextUsername),
		Role: c.GetString(ContextUserRole),
	}
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			actor.UserID = &id
		}
	}
	return actor
}
