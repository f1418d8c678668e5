package handler

import (
	"station_chat/internal/config"
	"station_chat/internal/service"
	"station_chat/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Player    *PlayerAuthHandler
	Chat      *ChatHandler
	Admin     *AdminHandler
	WebSocket *WebSocketHandler
}

// NewHandlers принимает тот же Hub, что передан в сервисы как Transport
func NewHandlers(services *service.Services, hub *Hub, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(hub, cfg),
		Auth:      NewAuthHandler(services.AdminAuth, log),
		Player:    NewPlayerAuthHandler(services.PlayerAuth, log),
		Chat:      NewChatHandler(services.Moderation, log),
		Admin:     NewAdminHandler(services.Lifecycle, services.Audit, services.Chat, log),
		WebSocket: NewWebSocketHandler(hub, services.Chat, log),
	}
}
