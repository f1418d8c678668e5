package repository

import (
	"github.com/google/uuid"
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

// RateLimitRepository хранит состояние ограничителя по сессиям.
// Как и ChatRepository, используется только из горутины диспетчера.
type RateLimitRepository interface {
	// Get возвращает состояние сессии, создавая его при первом обращении
	Get(sessionID uuid.UUID) *domain.RateLimitState
	Remove(sessionID uuid.UUID)
	Len() int
}

type rateLimitRepository struct {
	states map[uuid.UUID]*domain.RateLimitState
	log    logger.Logger
}

func NewRateLimitRepository(log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{
		states: make(map[uuid.UUID]*domain.RateLimitState),
		log:    log,
	}
}

func (r *rateLimitRepository) Get(sessionID uuid.UUID) *domain.RateLimitState {
	state, ok := r.states[sessionID]
	if !ok {
		state = &domain.RateLimitState{}
		r.states[sessionID] = state
	}
	return state
}

func (r *rateLimitRepository) Remove(sessionID uuid.UUID) {
	if _, ok := r.states[sessionID]; ok {
		r.log.Debug("Dropping rate limit state", "session", sessionID)
		delete(r.states, sessionID)
	}
}

func (r *rateLimitRepository) Len() int {
	return len(r.states)
}
