package handler

import (
	"station_chat/internal/config"
	"station_chat/internal/middleware"
	"station_chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func NewRouter(
	handlers *Handlers,
	authMiddleware *middleware.AuthMiddleware,
	playerAuthMiddleware *middleware.PlayerAuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Check)

	// Игровые клиенты
	router.GET("/ws/chat", playerAuthMiddleware.RequirePlayer(), handlers.WebSocket.HandleChat)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(rateLimitMiddleware.Limit())
		{
			auth.POST("/register", handlers.Player.Register)
			auth.POST("/login", handlers.Player.Login)
		}

		v1.POST("/admin/login", rateLimitMiddleware.Limit(), handlers.Auth.Login)

		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			chat := admin.Group("/chat")
			{
				chat.GET("/messages", handlers.Chat.GetMessages)
				chat.GET("/messages/:id", handlers.Chat.GetMessage)
				chat.PATCH("/messages/:id", handlers.Chat.PatchMessage)
				chat.DELETE("/messages/:id", handlers.Chat.DeleteMessage)
				chat.POST("/nuke", handlers.Chat.Nuke)
			}

			admin.POST("/round/restart", handlers.Admin.RoundRestart)
			admin.POST("/replay/finished", handlers.Admin.ReplayFinished)
			admin.GET("/audit", handlers.Admin.Audit)
			admin.PATCH("/world/players/:name", handlers.Admin.SetEntityState)
		}
	}

	return router
}
