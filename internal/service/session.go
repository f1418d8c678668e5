package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"station_chat/internal/domain"
	"station_chat/internal/repository"
	"station_chat/pkg/logger"
)

// SessionDirectory - живые сессии игроков. Используется только из Dispatcher.
type SessionDirectory interface {
	repository.SessionLookup
	// Connect регистрирует сессию и возвращает ее поколение
	Connect(session domain.Session) uint64
	Disconnect(id uuid.UUID) (domain.Session, bool)
	SessionByName(name string) (domain.Session, bool)
	Attach(id uuid.UUID, actor domain.ActorID) bool
	Detach(id uuid.UUID) (domain.ActorID, bool)
	Sessions() []domain.Session
	Admins() []domain.Session
}

type sessionDirectory struct {
	sessions map[uuid.UUID]*domain.Session
	byName   map[string]uuid.UUID
	log      logger.Logger
}

func NewSessionDirectory(log logger.Logger) SessionDirectory {
	return &sessionDirectory{
		sessions: make(map[uuid.UUID]*domain.Session),
		byName:   make(map[string]uuid.UUID),
		log:      log,
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (d *sessionDirectory) Connect(session domain.Session) uint64 {
	s := session
	s.Generation = 1
	if existing, ok := d.sessions[session.ID]; ok {
		delete(d.byName, nameKey(existing.Name))
		s.Generation = existing.Generation + 1
	}

	d.sessions[s.ID] = &s
	d.byName[nameKey(s.Name)] = s.ID

	d.log.Info("Session connected", "session", s.ID, "name", s.Name, "admin", s.IsAdmin, "generation", s.Generation)
	return s.Generation
}

func (d *sessionDirectory) Disconnect(id uuid.UUID) (domain.Session, bool) {
	s, ok := d.sessions[id]
	if !ok {
		return domain.Session{}, false
	}

	delete(d.sessions, id)
	if d.byName[nameKey(s.Name)] == id {
		delete(d.byName, nameKey(s.Name))
	}

	d.log.Info("Session disconnected", "session", id, "name", s.Name)
	return *s, true
}

func (d *sessionDirectory) SessionByID(id uuid.UUID) (domain.Session, bool) {
	s, ok := d.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	return *s, true
}

func (d *sessionDirectory) SessionByName(name string) (domain.Session, bool) {
	id, ok := d.byName[nameKey(name)]
	if !ok {
		return domain.Session{}, false
	}
	return d.SessionByID(id)
}

func (d *sessionDirectory) Attach(id uuid.UUID, actor domain.ActorID) bool {
	s, ok := d.sessions[id]
	if !ok {
		return false
	}
	s.Attached = actor
	s.Status = domain.SessionInGame
	return true
}

func (d *sessionDirectory) Detach(id uuid.UUID) (domain.ActorID, bool) {
	s, ok := d.sessions[id]
	if !ok || s.Attached == domain.NoActor {
		return domain.NoActor, false
	}
	actor := s.Attached
	s.Attached = domain.NoActor
	s.Status = domain.SessionConnected
	return actor, true
}

// Sessions возвращает снимок, отсортированный по имени
func (d *sessionDirectory) Sessions() []domain.Session {
	out := make([]domain.Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (d *sessionDirectory) Admins() []domain.Session {
	var out []domain.Session
	for _, s := range d.Sessions() {
		if s.IsAdmin {
			out = append(out, s)
		}
	}
	return out
}
