package service

import (
	"context"

	"station_chat/internal/domain"
	"station_chat/internal/repository"
	"station_chat/pkg/logger"
)

// LifecycleService - хуки хоста на границах раунда. Оба вызывают Refresh.
type LifecycleService interface {
	OnRoundRestart(ctx context.Context, actor Actor) error
	OnReplayRecordingFinished(ctx context.Context, actor Actor) error
}

type lifecycleService struct {
	dispatcher *Dispatcher
	chatRepo   repository.ChatRepository
	audit      AuditService
	log        logger.Logger
}

func NewLifecycleService(dispatcher *Dispatcher, chatRepo repository.ChatRepository, audit AuditService, log logger.Logger) LifecycleService {
	return &lifecycleService{
		dispatcher: dispatcher,
		chatRepo:   chatRepo,
		audit:      audit,
		log:        log,
	}
}

func (s *lifecycleService) OnRoundRestart(ctx context.Context, actor Actor) error {
	return s.refresh(ctx, actor, domain.EventTypeRoundRestarted)
}

func (s *lifecycleService) OnReplayRecordingFinished(ctx context.Context, actor Actor) error {
	return s.refresh(ctx, actor, domain.EventTypeReplayFinished)
}

func (s *lifecycleService) refresh(ctx context.Context, actor Actor, eventType string) error {
	var dropped int
	if err := s.dispatcher.Do(ctx, func() {
		dropped = s.chatRepo.Len()
		s.chatRepo.Refresh()
	}); err != nil {
		s.log.Error("Failed to refresh chat repository", "error", err, "event_type", eventType)
		return err
	}

	s.log.Info("Chat repository refreshed", "event_type", eventType, "dropped", dropped)
	if err := s.audit.LogEvent(ctx, actor, eventType, map[string]interface{}{"dropped": dropped}); err != nil {
		s.log.Warn("Failed to write audit log", "event_type", eventType, "error", err)
	}
	return nil
}
