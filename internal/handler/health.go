package handler

import (
	"net/http"

	"station_chat/internal/config"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	hub         *Hub
	environment string
}

func NewHealthHandler(hub *Hub, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		hub:         hub,
		environment: cfg.Environment,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     "station-chat",
		"environment": h.environment,
		"clients":     h.hub.Len(),
	})
}
