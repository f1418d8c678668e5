package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatKind - вид сообщения, определяет набор валидаторов и мутаторов
type ChatKind string

const (
	KindVerbal       ChatKind = "verbal"
	KindVisual       ChatKind = "visual"
	KindAnnouncement ChatKind = "announcement"
	KindOOC          ChatKind = "ooc"
	KindRadio        ChatKind = "radio"
)

// AllKinds - все виды в порядке объявления
var AllKinds = []ChatKind{KindVerbal, KindVisual, KindAnnouncement, KindOOC, KindRadio}

func (k ChatKind) Valid() bool {
	switch k {
	case KindVerbal, KindVisual, KindAnnouncement, KindOOC, KindRadio:
		return true
	}
	return false
}

// ActorID - идентификатор сущности в симуляции; 0 - сущности нет
type ActorID uint64

const NoActor ActorID = 0

// ChannelID - ссылка на прототип канала
type ChannelID string

// AttemptPayload - данные, специфичные для вида сообщения.
// Реализации закрыты внутри пакета.
type AttemptPayload interface {
	Kind() ChatKind
	isAttemptPayload()
}

type VerbalPayload struct{}

type VisualPayload struct{}

type AnnouncementPayload struct {
	Sender string `json:"sender"`
}

type OOCPayload struct{}

type RadioPayload struct {
	Frequency string `json:"frequency"`
}

func (VerbalPayload) Kind() ChatKind       { return KindVerbal }
func (VisualPayload) Kind() ChatKind       { return KindVisual }
func (AnnouncementPayload) Kind() ChatKind { return KindAnnouncement }
func (OOCPayload) Kind() ChatKind          { return KindOOC }
func (RadioPayload) Kind() ChatKind        { return KindRadio }

func (VerbalPayload) isAttemptPayload()       {}
func (VisualPayload) isAttemptPayload()       {}
func (AnnouncementPayload) isAttemptPayload() {}
func (OOCPayload) isAttemptPayload()          {}
func (RadioPayload) isAttemptPayload()        {}

// PayloadForKind возвращает пустой payload для вида
func PayloadForKind(kind ChatKind) AttemptPayload {
	switch kind {
	case KindVisual:
		return VisualPayload{}
	case KindAnnouncement:
		return AnnouncementPayload{}
	case KindOOC:
		return OOCPayload{}
	case KindRadio:
		return RadioPayload{}
	default:
		return VerbalPayload{}
	}
}

// ChatAttempt - непроверенный запрос клиента, живет одну обработку
type ChatAttempt struct {
	Author  uuid.UUID
	Actor   ActorID
	Channel ChannelID
	Text    string
	Target  *ActorID
	Payload AttemptPayload
}

func (a ChatAttempt) Kind() ChatKind {
	if a.Payload == nil {
		return KindVerbal
	}
	return a.Payload.Kind()
}

// ValidationOutcome накапливает результат цепочки валидаторов.
// Отмена необратима, причина первой отмены не перезаписывается.
type ValidationOutcome struct {
	cancelled bool
	reason    string
}

func (o *ValidationOutcome) Cancel(reason string) {
	if o.cancelled {
		return
	}
	o.cancelled = true
	o.reason = reason
}

func (o *ValidationOutcome) Cancelled() bool { return o.cancelled }
func (o *ValidationOutcome) Reason() string  { return o.reason }

// SanitizationOutcome - результат санитайзера, Commit срабатывает один раз
type SanitizationOutcome struct {
	raw       string
	sanitized *string
}

func NewSanitizationOutcome(raw string) *SanitizationOutcome {
	return &SanitizationOutcome{raw: raw}
}

func (o *SanitizationOutcome) Raw() string { return o.raw }

// Commit фиксирует текст; повторные вызовы игнорируются
func (o *SanitizationOutcome) Commit(text string) {
	if o.sanitized != nil {
		return
	}
	o.sanitized = &text
}

func (o *SanitizationOutcome) Committed() bool { return o.sanitized != nil }

func (o *SanitizationOutcome) Final() string {
	if o.sanitized != nil {
		return *o.sanitized
	}
	return o.raw
}

// RecordID уникален только в пределах раунда
type RecordID uint32

// NoRecord зарезервирован как "нет записи"
const NoRecord RecordID = 0

// ChatRecord - сохраненное сообщение, принадлежит репозиторию
type ChatRecord struct {
	ID            RecordID   `json:"id"`
	AuthorName    string     `json:"author_name"`
	AuthorSession uuid.UUID  `json:"author_session"`
	AuthorActor   ActorID    `json:"author_actor,omitempty"`
	EntityName    string     `json:"entity_name,omitempty"`
	Kind          ChatKind   `json:"kind"`
	Channel       ChannelID  `json:"channel"`
	Text          string     `json:"text"`
	Target        *ActorID   `json:"target,omitempty"`
	Frequency     string     `json:"frequency,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	PatchedAt     *time.Time `json:"patched_at,omitempty"`
}

// Clone возвращает копию, которую можно отдавать наружу
func (r *ChatRecord) Clone() ChatRecord {
	c := *r
	if r.Target != nil {
		t := *r.Target
		c.Target = &t
	}
	if r.PatchedAt != nil {
		p := *r.PatchedAt
		c.PatchedAt = &p
	}
	return c
}
