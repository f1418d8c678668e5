package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"station_chat/internal/domain"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

// ChatService - точка входа транспорта: подключения, сущности и попытки чата.
// Все изменения состояния уходят в Dispatcher.
type ChatService interface {
	Connect(ctx context.Context, identity PlayerIdentity) (domain.Session, error)
	Disconnect(sessionID uuid.UUID, generation uint64) error
	Attach(sessionID uuid.UUID, req domain.AttachRequest) error
	Move(sessionID uuid.UUID, req domain.MoveRequest) error
	Detach(sessionID uuid.UUID) error
	Send(sessionID uuid.UUID, req domain.ChatRequest) error
	// SetEntityState меняет поля, которыми владеет симуляция
	SetEntityState(ctx context.Context, name string, state domain.EntityState) (domain.Entity, error)
}

type chatService struct {
	dispatcher *Dispatcher
	sessions   SessionDirectory
	world      World
	rateLimit  RateLimitService
	intake     IntakeService
	log        logger.Logger
}

func NewChatService(
	dispatcher *Dispatcher,
	sessions SessionDirectory,
	world World,
	rateLimit RateLimitService,
	intake IntakeService,
	log logger.Logger,
) ChatService {
	return &chatService{
		dispatcher: dispatcher,
		sessions:   sessions,
		world:      world,
		rateLimit:  rateLimit,
		intake:     intake,
		log:        log,
	}
}

// Connect открывает сессию для личности из проверенного токена
func (s *chatService) Connect(ctx context.Context, identity PlayerIdentity) (domain.Session, error) {
	if identity.ID == uuid.Nil || strings.TrimSpace(identity.Name) == "" {
		return domain.Session{}, apperrors.ErrUnauthorized
	}

	session := domain.Session{
		ID:      identity.ID,
		Name:    identity.Name,
		Status:  domain.SessionConnected,
		IsAdmin: identity.IsAdmin,
	}

	if err := s.dispatcher.Do(ctx, func() {
		// переподключение сохраняет привязку к сущности
		if existing, ok := s.sessions.SessionByID(session.ID); ok {
			session.Attached = existing.Attached
			session.Status = existing.Status
		}
		session.Generation = s.sessions.Connect(session)
	}); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Disconnect закрывает сессию, если generation все еще текущее.
// Отключение старого сокета после переподключения ничего не меняет.
func (s *chatService) Disconnect(sessionID uuid.UUID, generation uint64) error {
	return s.dispatcher.Submit(func() {
		current, ok := s.sessions.SessionByID(sessionID)
		if !ok {
			return
		}
		if current.Generation != generation {
			s.log.Debug("Stale disconnect ignored", "session", sessionID,
				"generation", generation, "current", current.Generation)
			return
		}

		session, _ := s.sessions.Disconnect(sessionID)
		if session.Attached != domain.NoActor {
			s.world.Remove(session.Attached)
		}
		s.rateLimit.Forget(sessionID)
	})
}

func (s *chatService) Attach(sessionID uuid.UUID, req domain.AttachRequest) error {
	return s.dispatcher.Submit(func() {
		session, ok := s.sessions.SessionByID(sessionID)
		if !ok {
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = session.Name
		}

		// Повторная привязка обновляет только то, что знает клиент
		if session.Attached != domain.NoActor {
			if entity, ok := s.world.Entity(session.Attached); ok {
				entity.Name = name
				entity.Position = req.Position
				entity.Language = req.Language
				s.world.Upsert(entity)
				s.sessions.Attach(sessionID, entity.ID)
				return
			}
		}

		actor := s.world.Upsert(domain.Entity{
			Name:     name,
			Position: req.Position,
			Alive:    true,
			Language: req.Language,
		})
		s.sessions.Attach(sessionID, actor)
	})
}

func (s *chatService) Move(sessionID uuid.UUID, req domain.MoveRequest) error {
	return s.dispatcher.Submit(func() {
		session, ok := s.sessions.SessionByID(sessionID)
		if !ok || session.Attached == domain.NoActor {
			return
		}
		s.world.Move(session.Attached, req.Position)
	})
}

func (s *chatService) SetEntityState(ctx context.Context, name string, state domain.EntityState) (domain.Entity, error) {
	var (
		entity domain.Entity
		found  bool
	)
	if err := s.dispatcher.Do(ctx, func() {
		session, ok := s.sessions.SessionByName(name)
		if !ok || session.Attached == domain.NoActor {
			return
		}
		if !s.world.SetState(session.Attached, state) {
			return
		}
		entity, found = s.world.Entity(session.Attached)
	}); err != nil {
		return domain.Entity{}, err
	}
	if !found {
		return domain.Entity{}, fmt.Errorf("entity for %q: %w", name, apperrors.ErrNotFound)
	}

	s.log.Info("Entity state updated", "name", name, "entity", entity.ID, "alive", entity.Alive, "ghost", entity.Ghost)
	return entity, nil
}

func (s *chatService) Detach(sessionID uuid.UUID) error {
	return s.dispatcher.Submit(func() {
		if actor, ok := s.sessions.Detach(sessionID); ok {
			s.world.Remove(actor)
		}
	})
}

func (s *chatService) Send(sessionID uuid.UUID, req domain.ChatRequest) error {
	attempt := domain.ChatAttempt{
		Author:  sessionID,
		Channel: req.Channel,
		Text:    req.Text,
		Target:  req.Target,
	}
	if req.Frequency != "" {
		attempt.Payload = domain.RadioPayload{Frequency: req.Frequency}
	}

	return s.dispatcher.Submit(func() {
		s.intake.Submit(attempt)
	})
}
