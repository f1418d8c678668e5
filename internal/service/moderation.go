package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"station_chat/internal/domain"
	"station_chat/internal/repository"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

// ModerationService - правка и удаление сообщений для админских инструментов.
// Операции над хранилищем выполняются в Dispatcher, аудит пишется после.
type ModerationService interface {
	Get(ctx context.Context, id domain.RecordID) (domain.ChatRecord, bool, error)
	Patch(ctx context.Context, actor Actor, id domain.RecordID, text string) (bool, error)
	Delete(ctx context.Context, actor Actor, id domain.RecordID) (bool, error)
	NukeForUserID(ctx context.Context, actor Actor, userID uuid.UUID) (bool, error)
	NukeForUsername(ctx context.Context, actor Actor, username string) (bool, error)
	// ListMessages читает зеркало журнала из Redis
	ListMessages(ctx context.Context, limit int) ([]domain.ChatRecord, error)
}

type moderationService struct {
	dispatcher  *Dispatcher
	chatRepo    repository.ChatRepository
	chatLogRepo repository.ChatLogRepository
	playerRepo  repository.PlayerRepository
	sessions    SessionDirectory
	audit       AuditService
	log         logger.Logger
}

func NewModerationService(
	dispatcher *Dispatcher,
	chatRepo repository.ChatRepository,
	chatLogRepo repository.ChatLogRepository,
	playerRepo repository.PlayerRepository,
	sessions SessionDirectory,
	audit AuditService,
	log logger.Logger,
) ModerationService {
	return &moderationService{
		dispatcher:  dispatcher,
		chatRepo:    chatRepo,
		chatLogRepo: chatLogRepo,
		playerRepo:  playerRepo,
		sessions:    sessions,
		audit:       audit,
		log:         log,
	}
}

func (s *moderationService) Get(ctx context.Context, id domain.RecordID) (domain.ChatRecord, bool, error) {
	var (
		record domain.ChatRecord
		ok     bool
	)
	err := s.dispatcher.Do(ctx, func() {
		record, ok = s.chatRepo.GetByID(id)
	})
	return record, ok, err
}

func (s *moderationService) Patch(ctx context.Context, actor Actor, id domain.RecordID, text string) (bool, error) {
	var (
		before domain.ChatRecord
		ok     bool
	)
	err := s.dispatcher.Do(ctx, func() {
		if before, ok = s.chatRepo.GetByID(id); ok {
			ok = s.chatRepo.Patch(id, text)
		}
	})
	if err != nil || !ok {
		return false, err
	}

	s.writeAudit(ctx, actor, domain.EventTypeMessagePatched, map[string]interface{}{
		"record_id": id,
		"author":    before.AuthorName,
		"old_text":  before.Text,
		"new_text":  text,
	})
	return true, nil
}

func (s *moderationService) Delete(ctx context.Context, actor Actor, id domain.RecordID) (bool, error) {
	var (
		before domain.ChatRecord
		ok     bool
	)
	err := s.dispatcher.Do(ctx, func() {
		if before, ok = s.chatRepo.GetByID(id); ok {
			ok = s.chatRepo.Delete(id)
		}
	})
	if err != nil || !ok {
		return false, err
	}

	s.writeAudit(ctx, actor, domain.EventTypeMessageDeleted, map[string]interface{}{
		"record_id": id,
		"author":    before.AuthorName,
		"text":      before.Text,
	})
	return true, nil
}

func (s *moderationService) NukeForUserID(ctx context.Context, actor Actor, userID uuid.UUID) (bool, error) {
	var (
		count int
		ok    bool
	)
	err := s.dispatcher.Do(ctx, func() {
		count = len(s.chatRepo.IDsForUser(userID))
		ok = s.chatRepo.NukeForUser(userID)
	})
	if err != nil || !ok {
		return false, err
	}

	s.log.Info("Nuked chat messages", "user_id", userID, "count", count, "by", actor.Name)
	s.writeAudit(ctx, actor, domain.EventTypeUserNuked, map[string]interface{}{
		"user_id": userID.String(),
		"count":   count,
	})
	return true, nil
}

// NukeForUsername ищет сначала среди подключенных, затем в каталоге игроков
func (s *moderationService) NukeForUsername(ctx context.Context, actor Actor, username string) (bool, error) {
	var (
		session domain.Session
		online  bool
	)
	if err := s.dispatcher.Do(ctx, func() {
		session, online = s.sessions.SessionByName(username)
	}); err != nil {
		return false, err
	}
	if online {
		return s.NukeForUserID(ctx, actor, session.ID)
	}

	player, err := s.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		return false, fmt.Errorf("failed to resolve username: %w", err)
	}
	return s.NukeForUserID(ctx, actor, player.ID)
}

func (s *moderationService) ListMessages(ctx context.Context, limit int) ([]domain.ChatRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	return s.chatLogRepo.List(ctx, limit)
}

func (s *moderationService) writeAudit(ctx context.Context, actor Actor, eventType string, payload map[string]interface{}) {
	if err := s.audit.LogEvent(ctx, actor, eventType, payload); err != nil {
		s.log.Warn("Failed to write audit log", "event_type", eventType, "error", err)
	}
}
