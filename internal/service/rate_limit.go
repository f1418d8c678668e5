package service

import (
	"time"

	"github.com/google/uuid"
	"station_chat/internal/config"
	"station_chat/internal/domain"
	"station_chat/internal/repository"
	"station_chat/pkg/logger"
)

// RateLimitService - счетчик сообщений с затухающим окном
type RateLimitService interface {
	// Check возвращает allowed и причину; пустая причина при отказе означает тихий отказ
	Check(session domain.Session, messageLength int) (bool, string)
	Forget(sessionID uuid.UUID)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	cfg           config.ChatConfig
	alerts        AlertService
	loc           Localizer
	now           func() time.Time
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, cfg config.ChatConfig, alerts AlertService, loc Localizer, log logger.Logger) RateLimitService {
	return newRateLimitService(rateLimitRepo, cfg, alerts, loc, time.Now, log)
}

func newRateLimitService(rateLimitRepo repository.RateLimitRepository, cfg config.ChatConfig, alerts AlertService, loc Localizer, now func() time.Time, log logger.Logger) *rateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		cfg:           cfg,
		alerts:        alerts,
		loc:           loc,
		now:           now,
		log:           log,
	}
}

func (s *rateLimitService) Check(session domain.Session, messageLength int) (bool, string) {
	state := s.rateLimitRepo.Get(session.ID)
	now := s.now()

	// Новое окно: счетчики делятся пополам, а не обнуляются
	if !now.Before(state.WindowExpiresAt) {
		state.WindowExpiresAt = now.Add(s.cfg.RateLimitPeriod)
		state.MessageCount /= 2
		state.CharacterCount /= 2
		state.Warned = false
	}

	state.MessageCount++
	state.CharacterCount += messageLength

	if state.MessageCount <= s.cfg.RateLimitCount && state.CharacterCount <= s.cfg.RateLimitLength {
		return true, ""
	}

	if s.cfg.RateLimitAnnounceAdmins && !now.Before(state.NextAdminAnnounce) {
		s.alerts.AlertAdmins(s.loc.Localize(locRateLimitAdminAlert, "player", session.Name))
		state.NextAdminAnnounce = now.Add(s.cfg.RateLimitAnnounceAdminsDelay)
	}

	if state.Warned {
		return false, ""
	}
	state.Warned = true

	s.log.Info("Chat rate limit exceeded", "session", session.ID, "name", session.Name,
		"messages", state.MessageCount, "characters", state.CharacterCount)
	return false, s.loc.Localize(locRateLimited)
}

func (s *rateLimitService) Forget(sessionID uuid.UUID) {
	s.rateLimitRepo.Remove(sessionID)
}
