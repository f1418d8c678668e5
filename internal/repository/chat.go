package repository

import (
	"time"

	"github.com/google/uuid"
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

// SessionLookup разрешает автора в живую сессию
type SessionLookup interface {
	SessionByID(id uuid.UUID) (domain.Session, bool)
}

// RecordSubscriber получает уведомления о каждой мутации хранилища
type RecordSubscriber interface {
	OnRecordEvent(event domain.RecordEvent)
}

type RecordSubscriberFunc func(event domain.RecordEvent)

func (f RecordSubscriberFunc) OnRecordEvent(event domain.RecordEvent) { f(event) }

// ChatRepository - хранилище сообщений текущего раунда.
// Не потокобезопасно: все вызовы идут из одной горутины (service.Dispatcher).
type ChatRepository interface {
	// Add присваивает следующий идентификатор; false если автор уже отключился
	Add(record *domain.ChatRecord) bool
	GetByID(id domain.RecordID) (domain.ChatRecord, bool)
	IDsForUser(userID uuid.UUID) []domain.RecordID
	Patch(id domain.RecordID, text string) bool
	Delete(id domain.RecordID) bool
	// NukeForUser удаляет все сообщения пользователя; уведомление содержит только идентификаторы
	NukeForUser(userID uuid.UUID) bool
	// Refresh очищает хранилище и сбрасывает счетчик на 1
	Refresh()
	Len() int
	Subscribe(sub RecordSubscriber)
}

type chatRepository struct {
	sessions    SessionLookup
	records     map[domain.RecordID]*domain.ChatRecord
	byUser      map[uuid.UUID][]domain.RecordID
	nextID      domain.RecordID
	subscribers []RecordSubscriber
	now         func() time.Time
	log         logger.Logger
}

func NewChatRepository(sessions SessionLookup, log logger.Logger) ChatRepository {
	return newChatRepository(sessions, time.Now, log)
}

func newChatRepository(sessions SessionLookup, now func() time.Time, log logger.Logger) *chatRepository {
	return &chatRepository{
		sessions: sessions,
		records:  make(map[domain.RecordID]*domain.ChatRecord),
		byUser:   make(map[uuid.UUID][]domain.RecordID),
		nextID:   1,
		now:      now,
		log:      log,
	}
}

func (r *chatRepository) Subscribe(sub RecordSubscriber) {
	r.subscribers = append(r.subscribers, sub)
}

func (r *chatRepository) notify(event domain.RecordEvent) {
	for _, sub := range r.subscribers {
		sub.OnRecordEvent(event)
	}
}

func (r *chatRepository) Add(record *domain.ChatRecord) bool {
	if record == nil {
		return false
	}
	if record.ID != domain.NoRecord {
		r.log.Warn("Refusing to add record with preassigned id", "id", record.ID)
		return false
	}

	session, ok := r.sessions.SessionByID(record.AuthorSession)
	if !ok {
		r.log.Info("Dropping chat record, author session is gone", "session", record.AuthorSession)
		return false
	}

	// Имя автора фиксируется на момент создания
	record.AuthorName = session.Name
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	record.ID = r.nextID
	r.nextID++

	stored := record.Clone()
	r.records[stored.ID] = &stored
	r.byUser[stored.AuthorSession] = append(r.byUser[stored.AuthorSession], stored.ID)

	r.notify(domain.RecordCreated{Record: stored.Clone()})
	return true
}

func (r *chatRepository) GetByID(id domain.RecordID) (domain.ChatRecord, bool) {
	record, ok := r.records[id]
	if !ok {
		return domain.ChatRecord{}, false
	}
	return record.Clone(), true
}

func (r *chatRepository) IDsForUser(userID uuid.UUID) []domain.RecordID {
	ids := r.byUser[userID]
	out := make([]domain.RecordID, len(ids))
	copy(out, ids)
	return out
}

func (r *chatRepository) Patch(id domain.RecordID, text string) bool {
	record, ok := r.records[id]
	if !ok {
		return false
	}

	now := r.now()
	record.Text = text
	record.PatchedAt = &now

	r.notify(domain.RecordPatched{ID: id, Text: text})
	return true
}

func (r *chatRepository) Delete(id domain.RecordID) bool {
	record, ok := r.records[id]
	if !ok {
		return false
	}

	delete(r.records, id)
	r.unindex(record.AuthorSession, id)

	r.notify(domain.RecordDeleted{ID: id})
	return true
}

func (r *chatRepository) unindex(userID uuid.UUID, id domain.RecordID) {
	ids := r.byUser[userID]
	for i, existing := range ids {
		if existing == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(r.byUser, userID)
		return
	}
	r.byUser[userID] = ids
}

func (r *chatRepository) NukeForUser(userID uuid.UUID) bool {
	ids, ok := r.byUser[userID]
	if !ok || len(ids) == 0 {
		return false
	}

	deleted := make([]domain.RecordID, 0, len(ids))
	for _, id := range ids {
		if _, exists := r.records[id]; exists {
			delete(r.records, id)
			deleted = append(deleted, id)
		}
	}
	delete(r.byUser, userID)

	r.notify(domain.RecordsNuked{IDs: deleted})
	return true
}

func (r *chatRepository) Refresh() {
	r.records = make(map[domain.RecordID]*domain.ChatRecord)
	r.byUser = make(map[uuid.UUID][]domain.RecordID)
	r.nextID = 1

	r.notify(domain.RepositoryRefreshed{})
}

func (r *chatRepository) Len() int {
	return len(r.records)
}
