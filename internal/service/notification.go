package service

import (
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

// NotificationService пересылает клиентам правки, удаления и сброс раунда.
// Уведомление о nuke содержит только идентификаторы.
type NotificationService struct {
	transport Transport
	loc       Localizer
	log       logger.Logger
}

func NewNotificationService(transport Transport, loc Localizer, log logger.Logger) *NotificationService {
	return &NotificationService{transport: transport, loc: loc, log: log}
}

func (s *NotificationService) OnRecordEvent(event domain.RecordEvent) {
	switch e := event.(type) {
	case domain.RecordPatched:
		s.transport.Broadcast(domain.Event{
			Type:    domain.EventPatched,
			Payload: domain.ChatPatched{RecordID: e.ID, Text: e.Text},
		})
	case domain.RecordDeleted:
		s.transport.Broadcast(domain.Event{
			Type:    domain.EventDeleted,
			Payload: domain.ChatDeleted{RecordID: e.ID},
		})
	case domain.RecordsNuked:
		ids := append([]domain.RecordID(nil), e.IDs...)
		s.transport.Broadcast(domain.Event{
			Type:    domain.EventNuked,
			Payload: domain.ChatNuked{RecordIDs: ids},
		})
	case domain.RepositoryRefreshed:
		s.transport.Broadcast(domain.Event{
			Type:    domain.EventServer,
			Payload: domain.ServerMessage{Message: s.loc.Localize(locHistoryCleared)},
		})
	}
}
