package service

import (
	"github.com/google/uuid"
	"station_chat/internal/domain"
)

// Transport - доставка событий клиентам. Вызовы не должны блокироваться.
type Transport interface {
	Send(sessionID uuid.UUID, event domain.Event)
	Broadcast(event domain.Event)
}

// Prototypes - прототипы каналов и словарные замены
type Prototypes interface {
	Channel(id domain.ChannelID) (domain.ChannelPrototype, bool)
	ApplyReplacements(text, accentID string) string
}
