package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"station_chat/internal/domain"
	"station_chat/internal/repository"
	"station_chat/pkg/logger"
)

// Actor - кто выполняет действие модерации или жизненного цикла
type Actor struct {
	UserID *uuid.UUID
	Name   string
	Role   string
}

// SystemActor - действия, пришедшие от хоста без токена модератора
var SystemActor = Actor{Name: "system", Role: domain.ActorRoleSystem}

type AuditService interface {
	LogEvent(ctx context.Context, actor Actor, eventType string, payload map[string]interface{}) error
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
	now       func() time.Time
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		now:       time.Now,
		log:       log,
	}
}

func (s *auditService) LogEvent(ctx context.Context, actor Actor, eventType string, payload map[string]interface{}) error {
	if payload == nil {
		payload = make(map[string]interface{})
	}

	auditLog := &domain.AuditLog{
		EventTime:   s.now(),
		ActorUserID: actor.UserID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		EventType:   eventType,
		Payload:     payload,
	}

	return s.auditRepo.CreateLog(ctx, auditLog)
}

func (s *auditService) ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.auditRepo.ListRecent(ctx, limit)
}
