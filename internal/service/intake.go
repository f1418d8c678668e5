package service

import (
	"unicode/utf8"

	"station_chat/internal/domain"
	"station_chat/internal/repository"
	"station_chat/pkg/logger"
)

type IntakeStatus int

const (
	// IntakeAccepted - запись создана и разослана
	IntakeAccepted IntakeStatus = iota
	// IntakeRejected - отказ; причина отправлена автору, если не пуста
	IntakeRejected
	// IntakeDropped - попытка молча отброшена
	IntakeDropped
)

type IntakeResult struct {
	Status   IntakeStatus
	Reason   string
	RecordID domain.RecordID
}

func (r IntakeResult) Accepted() bool { return r.Status == IntakeAccepted }

// IntakeService: ограничитель -> валидаторы -> санитайзер -> Repository.Add
type IntakeService interface {
	Submit(attempt domain.ChatAttempt) IntakeResult
}

type intakeService struct {
	chatRepo   repository.ChatRepository
	sessions   SessionDirectory
	world      World
	prototypes Prototypes
	rateLimit  RateLimitService
	chain      *ValidationChain
	sanitizer  *Sanitizer
	transport  Transport
	loc        Localizer
	log        logger.Logger
}

func NewIntakeService(
	chatRepo repository.ChatRepository,
	sessions SessionDirectory,
	world World,
	prototypes Prototypes,
	rateLimit RateLimitService,
	chain *ValidationChain,
	sanitizer *Sanitizer,
	transport Transport,
	loc Localizer,
	log logger.Logger,
) IntakeService {
	return &intakeService{
		chatRepo:   chatRepo,
		sessions:   sessions,
		world:      world,
		prototypes: prototypes,
		rateLimit:  rateLimit,
		chain:      chain,
		sanitizer:  sanitizer,
		transport:  transport,
		loc:        loc,
		log:        log,
	}
}

func (s *intakeService) Submit(attempt domain.ChatAttempt) IntakeResult {
	session, ok := s.sessions.SessionByID(attempt.Author)
	if !ok {
		s.log.Info("Dropping chat attempt from unknown session", "session", attempt.Author)
		return IntakeResult{Status: IntakeDropped}
	}

	if allowed, reason := s.rateLimit.Check(session, utf8.RuneCountInString(attempt.Text)); !allowed {
		return s.reject(session, reason)
	}

	channel, ok := s.prototypes.Channel(attempt.Channel)
	if !ok {
		return s.reject(session, s.loc.Localize(locUnknownChannel))
	}

	if attempt.Payload == nil {
		attempt.Payload = domain.PayloadForKind(channel.Kind)
	}
	if attempt.Kind() != channel.Kind {
		return s.reject(session, s.loc.Localize(locUnknownChannel))
	}
	if attempt.Actor == domain.NoActor {
		attempt.Actor = session.Attached
	}

	req := ValidationRequest{
		Attempt: attempt,
		Session: session,
		Channel: channel,
	}
	if entity, ok := s.world.Entity(attempt.Actor); ok && attempt.Actor != domain.NoActor {
		req.Entity = &entity
	}
	if attempt.Target != nil {
		if target, ok := s.world.Entity(*attempt.Target); ok {
			req.Target = &target
		}
	}

	if outcome := s.chain.Run(req); outcome.Cancelled() {
		return s.reject(session, outcome.Reason())
	}

	text := s.sanitizer.Sanitize(attempt)
	if text == "" {
		s.log.Debug("Dropping chat attempt, empty after sanitize", "session", session.ID)
		return IntakeResult{Status: IntakeDropped}
	}

	record := &domain.ChatRecord{
		AuthorSession: session.ID,
		AuthorActor:   attempt.Actor,
		Kind:          attempt.Kind(),
		Channel:       channel.ID,
		Text:          text,
		Target:        attempt.Target,
	}
	if req.Entity != nil && !channel.EntityIndependent() {
		record.EntityName = req.Entity.Name
	}
	if attempt.Kind() == domain.KindRadio {
		record.Frequency = radioFrequency(attempt, channel)
	}

	s.log.Info(session.Name + " - " + string(channel.ID) + ": " + text)

	if !s.chatRepo.Add(record) {
		return IntakeResult{Status: IntakeDropped}
	}
	return IntakeResult{Status: IntakeAccepted, RecordID: record.ID}
}

func (s *intakeService) reject(session domain.Session, reason string) IntakeResult {
	if reason != "" {
		s.transport.Send(session.ID, domain.Event{
			Type:    domain.EventRejected,
			Payload: domain.ChatRejection{Reason: reason},
		})
	}
	return IntakeResult{Status: IntakeRejected, Reason: reason}
}
