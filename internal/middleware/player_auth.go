package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"station_chat/internal/service"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

// ContextPlayer - личность игрока, выставляется RequirePlayer
const ContextPlayer = "player"

type PlayerAuthMiddleware struct {
	authService service.PlayerAuthService
	log         logger.Logger
}

func NewPlayerAuthMiddleware(authService service.PlayerAuthService, log logger.Logger) *PlayerAuthMiddleware {
	return &PlayerAuthMiddleware{
		authService: authService,
		log:         log,
	}
}

// RequirePlayer пускает только с токеном игрока.
// Токен берется из Authorization: Bearer или из ?token= для клиентов без заголовков.
func (m *PlayerAuthMiddleware) RequirePlayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := playerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrUnauthorized.Error()})
			c.Abort()
			return
		}

		identity, err := m.authService.ValidateToken(token)
		if err != nil {
			m.log.Warn("Player token rejected", "error", err, "ip", c.ClientIP())
			c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(ContextPlayer, *identity)
		c.Next()
	}
}

func playerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

// PlayerFromContext возвращает личность, проверенную RequirePlayer
func PlayerFromContext(c *gin.Context) (service.PlayerIdentity, bool) {
	v, ok := c.Get(ContextPlayer)
	if !ok {
		return service.PlayerIdentity{}, false
	}
	identity, ok := v.(service.PlayerIdentity)
	return identity, ok
}
