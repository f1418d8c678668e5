package service

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"station_chat/internal/config"
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

// ValidationRequest - все, что валидатор может прочитать о попытке
type ValidationRequest struct {
	Attempt domain.ChatAttempt
	Session domain.Session
	Channel domain.ChannelPrototype
	// Entity - сущность автора, nil если сессия не привязана
	Entity *domain.Entity
	Target *domain.Entity
}

// Validator проверяет попытку и может отменить ее через outcome.
// Валидаторы не изменяют попытку и не зависят друг от друга.
type Validator interface {
	Name() string
	// Kinds - виды сообщений, к которым применяется валидатор; nil - ко всем
	Kinds() []domain.ChatKind
	Validate(req ValidationRequest, outcome *domain.ValidationOutcome)
}

type validatorFunc struct {
	name  string
	kinds []domain.ChatKind
	fn    func(req ValidationRequest, outcome *domain.ValidationOutcome)
}

// NewValidator оборачивает функцию в Validator
func NewValidator(name string, kinds []domain.ChatKind, fn func(req ValidationRequest, outcome *domain.ValidationOutcome)) Validator {
	return &validatorFunc{name: name, kinds: kinds, fn: fn}
}

func (v *validatorFunc) Name() string             { return v.name }
func (v *validatorFunc) Kinds() []domain.ChatKind { return v.kinds }

func (v *validatorFunc) Validate(req ValidationRequest, outcome *domain.ValidationOutcome) {
	v.fn(req, outcome)
}

// ValidationChain - упорядоченный реестр валидаторов с индексом по виду сообщения
type ValidationChain struct {
	byKind map[domain.ChatKind][]Validator
	log    logger.Logger
}

func NewValidationChain(log logger.Logger) *ValidationChain {
	return &ValidationChain{
		byKind: make(map[domain.ChatKind][]Validator),
		log:    log,
	}
}

// Register добавляет валидатор в конец цепочки для его видов
func (c *ValidationChain) Register(v Validator) {
	kinds := v.Kinds()
	if len(kinds) == 0 {
		kinds = domain.AllKinds
	}
	for _, kind := range kinds {
		c.byKind[kind] = append(c.byKind[kind], v)
	}
}

func (c *ValidationChain) Len(kind domain.ChatKind) int {
	return len(c.byKind[kind])
}

// Run прогоняет все валидаторы вида в порядке регистрации.
// Причина первой отмены сохраняется, остальные только логируются.
func (c *ValidationChain) Run(req ValidationRequest) domain.ValidationOutcome {
	var outcome domain.ValidationOutcome

	for _, v := range c.byKind[req.Attempt.Kind()] {
		var local domain.ValidationOutcome
		v.Validate(req, &local)
		if !local.Cancelled() {
			continue
		}

		if outcome.Cancelled() {
			c.log.Debug("Validator also rejected attempt", "validator", v.Name(), "reason", local.Reason())
			continue
		}
		outcome.Cancel(local.Reason())
		c.log.Debug("Chat attempt rejected", "validator", v.Name(), "session", req.Session.ID, "reason", local.Reason())
	}

	return outcome
}

// DefaultValidators - встроенные проверки каналов в порядке регистрации
func DefaultValidators(cfg config.ChatConfig, loc Localizer) []Validator {
	return []Validator{
		NewValidator("empty_text", nil, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			if strings.TrimSpace(req.Attempt.Text) == "" {
				outcome.Cancel(loc.Localize(locEmptyMessage))
			}
		}),

		NewValidator("message_length", nil, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			limit := cfg.MaxMessageLength
			if req.Attempt.Kind() == domain.KindAnnouncement {
				limit = cfg.MaxAnnouncementLength
			}
			if req.Channel.MaxLength > 0 {
				limit = req.Channel.MaxLength
			}
			if utf8.RuneCountInString(req.Attempt.Text) > limit {
				outcome.Cancel(loc.Localize(locMaxLengthExceeded, "limit", strconv.Itoa(limit)))
			}
		}),

		NewValidator("channel_toggle", []domain.ChatKind{domain.KindOOC}, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			switch req.Channel.Toggle {
			case "ooc":
				if !cfg.OOCEnabled {
					outcome.Cancel(loc.Localize(locOOCDisabled))
				}
			case "looc":
				if !cfg.LOOCEnabled {
					outcome.Cancel(loc.Localize(locLOOCDisabled))
				}
			}
		}),

		NewValidator("requires_admin", nil, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			if req.Channel.RequiresAdmin && !req.Session.IsAdmin {
				outcome.Cancel(loc.Localize(locAdminOnly))
			}
		}),

		// Админы читают и пишут в мертвый чат
		NewValidator("requires_ghost", nil, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			if !req.Channel.RequiresGhost || req.Session.IsAdmin {
				return
			}
			if req.Entity == nil || !req.Entity.Ghost {
				outcome.Cancel(loc.Localize(locDeadChannelDenied))
			}
		}),

		NewValidator("requires_entity", nil, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			if req.Channel.RequiresEntity && req.Entity == nil {
				outcome.Cancel(loc.Localize(locNoEntity))
			}
		}),

		NewValidator("requires_alive", []domain.ChatKind{domain.KindVerbal, domain.KindVisual, domain.KindRadio}, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			if !req.Channel.RequiresAlive {
				return
			}
			if req.Entity == nil {
				outcome.Cancel(loc.Localize(locNoEntity))
				return
			}
			if !req.Entity.Alive || req.Entity.Ghost {
				outcome.Cancel(loc.Localize(locDead))
			}
		}),

		NewValidator("requires_target", nil, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			if req.Channel.RequiresTarget && (req.Attempt.Target == nil || req.Target == nil) {
				outcome.Cancel(loc.Localize(locNoTarget))
			}
		}),

		NewValidator("radio_access", []domain.ChatKind{domain.KindRadio}, func(req ValidationRequest, outcome *domain.ValidationOutcome) {
			frequency := radioFrequency(req.Attempt, req.Channel)
			if req.Entity == nil || !req.Entity.HasRadio(frequency) {
				outcome.Cancel(loc.Localize(locNoRadio))
			}
		}),
	}
}

// radioFrequency - частота из попытки, иначе частота канала
func radioFrequency(attempt domain.ChatAttempt, channel domain.ChannelPrototype) string {
	if p, ok := attempt.Payload.(domain.RadioPayload); ok && p.Frequency != "" {
		return p.Frequency
	}
	return channel.Frequency
}
