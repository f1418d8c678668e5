package service

import (
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

// World - снимки сущностей симуляции: имя, позиция, жив ли, призрак ли.
// Клиент двигает только позицию, остальное меняет симуляция через SetState.
type World interface {
	// Upsert сохраняет сущность; нулевой ID заменяется новым
	Upsert(entity domain.Entity) domain.ActorID
	Entity(id domain.ActorID) (domain.Entity, bool)
	Move(id domain.ActorID, position domain.Position) bool
	SetState(id domain.ActorID, state domain.EntityState) bool
	Remove(id domain.ActorID) bool
}

type world struct {
	entities map[domain.ActorID]*domain.Entity
	nextID   domain.ActorID
	log      logger.Logger
}

func NewWorld(log logger.Logger) World {
	return &world{
		entities: make(map[domain.ActorID]*domain.Entity),
		nextID:   1,
		log:      log,
	}
}

func (w *world) Upsert(entity domain.Entity) domain.ActorID {
	if entity.ID == domain.NoActor {
		for {
			if _, taken := w.entities[w.nextID]; !taken {
				break
			}
			w.nextID++
		}
		entity.ID = w.nextID
		w.nextID++
	}

	e := entity
	e.Radio = append([]string(nil), entity.Radio...)
	e.Known = append([]string(nil), entity.Known...)
	w.entities[e.ID] = &e

	w.log.Debug("Entity updated", "entity", e.ID, "name", e.Name)
	return e.ID
}

func (w *world) Entity(id domain.ActorID) (domain.Entity, bool) {
	e, ok := w.entities[id]
	if !ok {
		return domain.Entity{}, false
	}
	return *e, true
}

func (w *world) Move(id domain.ActorID, position domain.Position) bool {
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	e.Position = position
	return true
}

// SetState применяет заданные поля; nil список не трогает, пустой очищает
func (w *world) SetState(id domain.ActorID, state domain.EntityState) bool {
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	if state.Alive != nil {
		e.Alive = *state.Alive
	}
	if state.Ghost != nil {
		e.Ghost = *state.Ghost
	}
	if state.Radio != nil {
		e.Radio = append([]string{}, state.Radio...)
	}
	if state.Known != nil {
		e.Known = append([]string{}, state.Known...)
	}
	if state.Accent != nil {
		e.Accent = *state.Accent
	}

	w.log.Debug("Entity state changed", "entity", id, "alive", e.Alive, "ghost", e.Ghost)
	return true
}

func (w *world) Remove(id domain.ActorID) bool {
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	return true
}
