package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"station_chat/internal/domain"
	"station_chat/internal/middleware"
	"station_chat/internal/service"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

// ChatHandler - модерация сообщений текущего раунда
type ChatHandler struct {
	moderation service.ModerationService
	log        logger.Logger
}

func NewChatHandler(moderation service.ModerationService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		moderation: moderation,
		log:        log,
	}
}

func parseRecordID(c *gin.Context) (domain.RecordID, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message ID"})
		return domain.NoRecord, false
	}
	return domain.RecordID(id), true
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	messages, err := h.moderation.ListMessages(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) GetMessage(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	record, found, err := h.moderation.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !found {
		_ = c.Error(apperrors.ErrRecordNotFound)
		return
	}

	c.JSON(http.StatusOK, record)
}

type PatchMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *ChatHandler) PatchMessage(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	var req PatchMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patched, err := h.moderation.Patch(c.Request.Context(), middleware.ActorFromContext(c), id, req.Text)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !patched {
		_ = c.Error(apperrors.ErrRecordNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "text": req.Text})
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	deleted, err := h.moderation.Delete(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !deleted {
		_ = c.Error(apperrors.ErrRecordNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

type NukeRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (h *ChatHandler) Nuke(c *gin.Context) {
	var req NukeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.ActorFromContext(c)
	var (
		nuked bool
		err   error
	)
	switch {
	case req.UserID != "":
		userID, parseErr := uuid.Parse(req.UserID)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
			return
		}
		nuked, err = h.moderation.NukeForUserID(c.Request.Context(), actor, userID)
	case req.Username != "":
		nuked, err = h.moderation.NukeForUsername(c.Request.Context(), actor, req.Username)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id or username required"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nuked": nuked})
}
