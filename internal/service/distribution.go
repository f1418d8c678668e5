package service

import (
	"math"
	"math/rand"
	"time"
	"unicode"

	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

// MessageContext - запись на пути к получателям после общих мутаций
type MessageContext struct {
	Record      domain.ChatRecord
	Channel     domain.ChannelPrototype
	Speaker     *domain.Entity
	Text        string
	SpeakerName string
}

// MessageMutator меняет сообщение один раз, независимо от получателя
type MessageMutator interface {
	Name() string
	MutateMessage(msg *MessageContext)
}

// Targeter вычисляет получателей для режима канала
type Targeter interface {
	Targets(msg MessageContext) []domain.DistributionCandidate
}

type TargeterFunc func(msg MessageContext) []domain.DistributionCandidate

func (f TargeterFunc) Targets(msg MessageContext) []domain.DistributionCandidate { return f(msg) }

// RecipientMutator меняет копию для одного получателя
type RecipientMutator interface {
	Name() string
	MutateForRecipient(msg MessageContext, candidate domain.DistributionCandidate, target *domain.DistributionTarget)
}

// DistributionService подписан на создание записей и рассылает копии получателям
type DistributionService struct {
	sessions          SessionDirectory
	world             World
	prototypes        Prototypes
	transport         Transport
	messageMutators   []MessageMutator
	targeters         map[domain.TargetMode]Targeter
	recipientMutators []RecipientMutator
	log               logger.Logger
}

func NewDistributionService(sessions SessionDirectory, world World, prototypes Prototypes, transport Transport, log logger.Logger) *DistributionService {
	s := &DistributionService{
		sessions:   sessions,
		world:      world,
		prototypes: prototypes,
		transport:  transport,
		targeters:  make(map[domain.TargetMode]Targeter),
		log:        log,
	}

	s.targeters[domain.TargetRange] = TargeterFunc(s.rangeTargets)
	s.targeters[domain.TargetGlobal] = TargeterFunc(s.globalTargets)
	s.targeters[domain.TargetAdmins] = TargeterFunc(s.adminTargets)
	s.targeters[domain.TargetRadio] = TargeterFunc(s.radioTargets)
	s.targeters[domain.TargetDead] = TargeterFunc(s.deadTargets)

	return s
}

func (s *DistributionService) AddMessageMutator(m MessageMutator) {
	s.messageMutators = append(s.messageMutators, m)
}

func (s *DistributionService) AddRecipientMutator(m RecipientMutator) {
	s.recipientMutators = append(s.recipientMutators, m)
}

// SetTargeter заменяет расчет получателей для режима
func (s *DistributionService) SetTargeter(mode domain.TargetMode, t Targeter) {
	s.targeters[mode] = t
}

func (s *DistributionService) OnRecordEvent(event domain.RecordEvent) {
	created, ok := event.(domain.RecordCreated)
	if !ok {
		return
	}
	s.distribute(created.Record)
}

func (s *DistributionService) distribute(record domain.ChatRecord) {
	channel, ok := s.prototypes.Channel(record.Channel)
	if !ok {
		s.log.Warn("Record references unknown channel", "id", record.ID, "channel", record.Channel)
		return
	}

	msg := MessageContext{
		Record:      record,
		Channel:     channel,
		Text:        record.Text,
		SpeakerName: record.AuthorName,
	}
	if record.AuthorActor != domain.NoActor {
		if speaker, ok := s.world.Entity(record.AuthorActor); ok {
			msg.Speaker = &speaker
		}
	}

	independent := channel.EntityIndependent()
	if !independent {
		if record.EntityName != "" {
			msg.SpeakerName = record.EntityName
		}
		for _, m := range s.messageMutators {
			m.MutateMessage(&msg)
		}
	}

	targeter, ok := s.targeters[channel.Targets]
	if !ok {
		s.log.Warn("No targeter for channel", "channel", channel.ID, "targets", channel.Targets)
		return
	}

	candidates := targeter.Targets(msg)
	for _, candidate := range candidates {
		// Копия строится заново для каждого получателя
		target := domain.DistributionTarget{
			Session:     candidate.Session.ID,
			Text:        msg.Text,
			SpeakerName: msg.SpeakerName,
		}
		if !independent {
			for _, m := range s.recipientMutators {
				m.MutateForRecipient(msg, candidate, &target)
			}
		}

		s.transport.Send(target.Session, domain.Event{
			Type: domain.EventDelivery,
			Payload: domain.ChatDelivery{
				RecordID: record.ID,
				Kind:     record.Kind,
				Channel:  record.Channel,
				Text:     target.Text,
				Speaker:  target.SpeakerName,
				SentAt:   record.CreatedAt,
			},
		})
	}

	s.log.Debug("Record distributed", "id", record.ID, "channel", channel.ID, "recipients", len(candidates))
}

// attachedEntity - сущность сессии, если она привязана
func (s *DistributionService) attachedEntity(session domain.Session) (*domain.Entity, bool) {
	if session.Attached == domain.NoActor {
		return nil, false
	}
	e, ok := s.world.Entity(session.Attached)
	if !ok {
		return nil, false
	}
	return &e, true
}

// rangeTargets - все в радиусе канала на той же карте, плюс призраки-наблюдатели
func (s *DistributionService) rangeTargets(msg MessageContext) []domain.DistributionCandidate {
	if msg.Speaker == nil {
		return nil
	}

	var out []domain.DistributionCandidate
	for _, session := range s.sessions.Sessions() {
		entity, ok := s.attachedEntity(session)
		if !ok {
			continue
		}
		distance, sameMap := msg.Speaker.Position.Distance(entity.Position)
		if !sameMap {
			continue
		}

		// Призраки слышат всю карту и понимают любой язык
		if distance <= msg.Channel.Range || entity.Ghost {
			out = append(out, domain.DistributionCandidate{Session: session, Entity: entity, Distance: distance, Observer: entity.Ghost})
		}
	}
	return out
}

func (s *DistributionService) globalTargets(msg MessageContext) []domain.DistributionCandidate {
	sessions := s.sessions.Sessions()
	out := make([]domain.DistributionCandidate, 0, len(sessions))
	for _, session := range sessions {
		entity, _ := s.attachedEntity(session)
		out = append(out, domain.DistributionCandidate{Session: session, Entity: entity, Distance: math.Inf(1)})
	}
	return out
}

func (s *DistributionService) adminTargets(msg MessageContext) []domain.DistributionCandidate {
	var out []domain.DistributionCandidate
	for _, session := range s.sessions.Admins() {
		entity, _ := s.attachedEntity(session)
		out = append(out, domain.DistributionCandidate{Session: session, Entity: entity, Distance: math.Inf(1)})
	}
	return out
}

func (s *DistributionService) radioTargets(msg MessageContext) []domain.DistributionCandidate {
	frequency := msg.Record.Frequency
	if frequency == "" {
		frequency = msg.Channel.Frequency
	}

	var out []domain.DistributionCandidate
	for _, session := range s.sessions.Sessions() {
		entity, ok := s.attachedEntity(session)
		if !ok {
			continue
		}
		if entity.Ghost {
			out = append(out, domain.DistributionCandidate{Session: session, Entity: entity, Distance: math.Inf(1), Observer: true})
			continue
		}
		if entity.HasRadio(frequency) {
			out = append(out, domain.DistributionCandidate{Session: session, Entity: entity, Distance: math.Inf(1)})
		}
	}
	return out
}

// deadTargets - призраки и админы
func (s *DistributionService) deadTargets(msg MessageContext) []domain.DistributionCandidate {
	var out []domain.DistributionCandidate
	for _, session := range s.sessions.Sessions() {
		entity, ok := s.attachedEntity(session)
		if session.IsAdmin || (ok && entity.Ghost) {
			out = append(out, domain.DistributionCandidate{Session: session, Entity: entity, Distance: math.Inf(1), Observer: true})
		}
	}
	return out
}

type accentMutator struct {
	replacer Replacer
}

// NewAccentMutator применяет словарный акцент говорящего к речи
func NewAccentMutator(replacer Replacer) MessageMutator {
	return &accentMutator{replacer: replacer}
}

func (m *accentMutator) Name() string { return "accent" }

func (m *accentMutator) MutateMessage(msg *MessageContext) {
	if msg.Speaker == nil || msg.Speaker.Accent == "" {
		return
	}
	if msg.Record.Kind != domain.KindVerbal && msg.Record.Kind != domain.KindRadio {
		return
	}
	msg.Text = m.replacer.ApplyReplacements(msg.Text, msg.Speaker.Accent)
}

// Доля символов, которые остаются читаемыми за пределами зоны разборчивости шепота
const whisperReadability = 0.2

type whisperMutator struct {
	rng *rand.Rand
	loc Localizer
}

// NewWhisperMutator: дальше clear_range текст шепота затирается, говорящий скрыт
func NewWhisperMutator(rng *rand.Rand, loc Localizer) RecipientMutator {
	return &whisperMutator{rng: rng, loc: loc}
}

func (m *whisperMutator) Name() string { return "whisper" }

func (m *whisperMutator) MutateForRecipient(msg MessageContext, candidate domain.DistributionCandidate, target *domain.DistributionTarget) {
	if !msg.Channel.Whisper() || candidate.Observer {
		return
	}
	if candidate.Distance <= msg.Channel.ClearRange {
		return
	}
	target.Text = ObfuscateReadability(target.Text, whisperReadability, m.rng)
	target.SpeakerName = m.loc.Localize(locWhisperUnknownSpeaker)
}

type languageMutator struct {
	rng *rand.Rand
}

// NewLanguageMutator заменяет речь тарабарщиной для тех, кто не знает язык говорящего
func NewLanguageMutator(rng *rand.Rand) RecipientMutator {
	return &languageMutator{rng: rng}
}

func (m *languageMutator) Name() string { return "language" }

func (m *languageMutator) MutateForRecipient(msg MessageContext, candidate domain.DistributionCandidate, target *domain.DistributionTarget) {
	if msg.Speaker == nil || candidate.Entity == nil || candidate.Observer {
		return
	}
	if msg.Record.Kind != domain.KindVerbal && msg.Record.Kind != domain.KindRadio {
		return
	}
	if candidate.Entity.Understands(msg.Speaker.Language) {
		return
	}
	target.Text = Gibberish(target.Text, m.rng)
}

// ObfuscateReadability заменяет символы на '~', оставляя пробелы и долю readability символов
func ObfuscateReadability(text string, readability float64, rng *rand.Rand) string {
	out := []rune(text)
	for i, r := range out {
		if unicode.IsSpace(r) {
			continue
		}
		if rng.Float64() >= readability {
			out[i] = '~'
		}
	}
	return string(out)
}

const gibberishLetters = "abdefghiklmnoprstuvz"

// Gibberish сохраняет длину, пробелы и пунктуацию, буквы заменяются случайными
func Gibberish(text string, rng *rand.Rand) string {
	out := []rune(text)
	for i, r := range out {
		if !unicode.IsLetter(r) {
			continue
		}
		c := rune(gibberishLetters[rng.Intn(len(gibberishLetters))])
		if unicode.IsUpper(r) {
			c = unicode.ToUpper(c)
		}
		out[i] = c
	}
	return string(out)
}

// NewRand - источник случайности для мутаторов; seed 0 берется из времени
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
