package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"station_chat/internal/domain"
	"station_chat/internal/middleware"
	"station_chat/internal/service"
	"station_chat/pkg/logger"
)

// AdminHandler - хуки жизненного цикла раунда, состояние мира и журнал аудита
type AdminHandler struct {
	lifecycle service.LifecycleService
	audit     service.AuditService
	chat      service.ChatService
	log       logger.Logger
}

func NewAdminHandler(lifecycle service.LifecycleService, audit service.AuditService, chat service.ChatService, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		lifecycle: lifecycle,
		audit:     audit,
		chat:      chat,
		log:       log,
	}
}

func (h *AdminHandler) RoundRestart(c *gin.Context) {
	if err := h.lifecycle.OnRoundRestart(c.Request.Context(), middleware.ActorFromContext(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) ReplayFinished(c *gin.Context) {
	if err := h.lifecycle.OnReplayRecordingFinished(c.Request.Context(), middleware.ActorFromContext(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) Audit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.audit.ListRecent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

// SetEntityState - PATCH /admin/world/players/:name, состояние сущности от симуляции
func (h *AdminHandler) SetEntityState(c *gin.Context) {
	var req domain.EntityState
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	entity, err := h.chat.SetEntityState(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.log.Info("Entity state set by admin", "name", c.Param("name"), "admin", middleware.ActorFromContext(c).Name)
	c.JSON(http.StatusOK, entity)
}
