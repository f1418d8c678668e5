package handler

import (
	"net/http"

	"station_chat/internal/service"
	"station_chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AdminAuthService
	log         logger.Logger
}

func NewAuthHandler(authService service.AdminAuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid login request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Warn("Admin login failed", "error", err, "username", req.Username, "ip", c.ClientIP())
		_ = c.Error(err)
		return
	}

	h.log.Info("Admin logged in", "username", response.Username)
	c.JSON(http.StatusOK, response)
}
