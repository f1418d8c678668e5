package handler

import (
	"net/http"

	"station_chat/internal/service"
	"station_chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PlayerAuthHandler - регистрация и вход игроков, токен открывает /ws/chat
type PlayerAuthHandler struct {
	authService service.PlayerAuthService
	log         logger.Logger
}

func NewPlayerAuthHandler(authService service.PlayerAuthService, log logger.Logger) *PlayerAuthHandler {
	return &PlayerAuthHandler{
		authService: authService,
		log:         log,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *PlayerAuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid register request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	player, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, player)
}

func (h *PlayerAuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid login request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Warn("Player login failed", "error", err, "username", req.Username, "ip", c.ClientIP())
		_ = c.Error(err)
		return
	}

	h.log.Info("Player logged in", "username", response.Username)
	c.JSON(http.StatusOK, response)
}
