package handler

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

const clientSendBuffer = 256

var (
	errInvalidPayload = errors.New("invalid payload")
	errUnknownEvent   = errors.New("unknown event type")
)

// Hub хранит подключенных клиентов и реализует service.Transport.
// Отправка не блокирует вызывающего: переполненный буфер клиента означает потерю события.
type Hub struct {
	clients map[uuid.UUID]*Client
	mu      sync.RWMutex
	log     logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		log:     log,
	}
}

// Register подключает клиента. Старое соединение той же сессии закрывается.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[client.sessionID]; ok && old != client {
		close(old.send)
		h.log.Info("Replacing client connection", "session", client.sessionID)
	}
	h.clients[client.sessionID] = client
}

// Unregister возвращает false, если клиента уже вытеснило новое соединение
func (h *Hub) Unregister(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.clients[client.sessionID]
	if !ok || current != client {
		return false
	}
	delete(h.clients, client.sessionID)
	close(client.send)
	return true
}

func (h *Hub) Connected(sessionID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Send(sessionID uuid.UUID, event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to marshal event", "error", err, "type", event.Type)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[sessionID]
	if !ok {
		return
	}
	h.push(client, data, event.Type)
}

func (h *Hub) Broadcast(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to marshal event", "error", err, "type", event.Type)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		h.push(client, data, event.Type)
	}
}

func (h *Hub) push(client *Client, data []byte, eventType domain.EventType) {
	select {
	case client.send <- data:
	default:
		h.log.Warn("Client send buffer full, dropping event", "session", client.sessionID, "type", eventType)
	}
}
