package domain

import "time"

// RecordEvent - уведомление репозитория о мутации
type RecordEvent interface {
	isRecordEvent()
}

// RecordCreated несет финальную запись с присвоенным идентификатором
type RecordCreated struct {
	Record ChatRecord
}

type RecordPatched struct {
	ID   RecordID
	Text string
}

type RecordDeleted struct {
	ID RecordID
}

// RecordsNuked содержит только идентификаторы, без автора
type RecordsNuked struct {
	IDs []RecordID
}

type RepositoryRefreshed struct{}

func (RecordCreated) isRecordEvent()       {}
func (RecordPatched) isRecordEvent()       {}
func (RecordDeleted) isRecordEvent()       {}
func (RecordsNuked) isRecordEvent()        {}
func (RepositoryRefreshed) isRecordEvent() {}

// EventType - тип сообщения на проводе
type EventType string

const (
	// клиент -> сервер
	EventChat   EventType = "chat"
	EventAttach EventType = "attach"
	EventMove   EventType = "move"
	EventDetach EventType = "detach"

	// сервер -> клиент
	EventDelivery   EventType = "chat_message"
	EventRejected   EventType = "chat_rejected"
	EventPatched    EventType = "chat_patched"
	EventDeleted    EventType = "chat_deleted"
	EventNuked      EventType = "chat_nuked"
	EventAdminAlert EventType = "admin_alert"
	EventServer     EventType = "server_message"
	EventError      EventType = "error"
)

// Event - обертка для websocket сообщений
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

// ChatRequest - входящая попытка от клиента
type ChatRequest struct {
	Channel   ChannelID `json:"channel"`
	Text      string    `json:"text"`
	Target    *ActorID  `json:"target,omitempty"`
	Frequency string    `json:"frequency,omitempty"`
}

// AttachRequest привязывает сессию к сущности мира.
// Клиент сообщает только то, что видит сам: имя, позицию и родной язык.
type AttachRequest struct {
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Language string   `json:"language,omitempty"`
}

type MoveRequest struct {
	Position Position `json:"position"`
}

// EntityState - состояние сущности от симуляции, nil поля не меняются
type EntityState struct {
	Alive  *bool    `json:"alive,omitempty"`
	Ghost  *bool    `json:"ghost,omitempty"`
	Radio  []string `json:"radio,omitempty"`
	Known  []string `json:"known,omitempty"`
	Accent *string  `json:"accent,omitempty"`
}

// ChatDelivery - копия записи для одного получателя
type ChatDelivery struct {
	RecordID RecordID  `json:"record_id"`
	Kind     ChatKind  `json:"kind"`
	Channel  ChannelID `json:"channel"`
	Text     string    `json:"text"`
	Speaker  string    `json:"speaker,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

type ChatRejection struct {
	Reason string `json:"reason"`
}

type ChatPatched struct {
	RecordID RecordID `json:"record_id"`
	Text     string   `json:"text"`
}

type ChatDeleted struct {
	RecordID RecordID `json:"record_id"`
}

type ChatNuked struct {
	RecordIDs []RecordID `json:"record_ids"`
}

type AdminAlert struct {
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

type ServerMessage struct {
	Message string `json:"message"`
}
