package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"station_chat/internal/domain"
	"station_chat/internal/middleware"
	"station_chat/internal/service"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // игровой клиент не браузер
	},
}

// inboundEvent - конверт от клиента, payload разбирается по типу
type inboundEvent struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

// Client - одно websocket соединение игрока
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID uuid.UUID
	chat      service.ChatService
	log       logger.Logger
}

type WebSocketHandler struct {
	hub         *Hub
	chatService service.ChatService
	log         logger.Logger
}

func NewWebSocketHandler(hub *Hub, chatService service.ChatService, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		chatService: chatService,
		log:         log,
	}
}

// HandleChat - GET /ws/chat, личность берется из токена (RequirePlayer)
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	identity, ok := middleware.PlayerFromContext(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return
	}

	session, err := h.chatService.Connect(c.Request.Context(), identity)
	if err != nil {
		h.log.Warn("Chat connect rejected", "error", err, "name", identity.Name)
		_ = c.Error(err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		_ = h.chatService.Disconnect(session.ID, session.Generation)
		return
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, clientSendBuffer),
		sessionID: session.ID,
		chat:      h.chatService,
		log:       h.log,
	}
	h.hub.Register(client)
	h.log.Info("Chat client connected", "session", session.ID, "name", session.Name, "admin", session.IsAdmin)

	go client.writePump()
	client.readPump()

	// Устаревшее поколение сервис проигнорирует, новая сессия останется
	h.hub.Unregister(client)
	if err := h.chatService.Disconnect(session.ID, session.Generation); err != nil {
		h.log.Warn("Failed to disconnect session", "error", err, "session", session.ID)
	}
	h.log.Info("Chat client disconnected", "session", session.ID, "generation", session.Generation)
}

func (c *Client) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected websocket close", "error", err, "session", c.sessionID)
			}
			return
		}

		var event inboundEvent
		if err := json.Unmarshal(message, &event); err != nil {
			c.reply("invalid message")
			continue
		}

		if err := c.handleEvent(event); err != nil {
			c.log.Warn("Failed to handle client event", "error", err, "type", event.Type, "session", c.sessionID)
			c.reply(err.Error())
		}
	}
}

func (c *Client) handleEvent(event inboundEvent) error {
	switch event.Type {
	case domain.EventChat:
		var req domain.ChatRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return errInvalidPayload
		}
		return c.chat.Send(c.sessionID, req)
	case domain.EventAttach:
		var req domain.AttachRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return errInvalidPayload
		}
		return c.chat.Attach(c.sessionID, req)
	case domain.EventMove:
		var req domain.MoveRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return errInvalidPayload
		}
		return c.chat.Move(c.sessionID, req)
	case domain.EventDetach:
		return c.chat.Detach(c.sessionID)
	default:
		return errUnknownEvent
	}
}

func (c *Client) reply(message string) {
	c.hub.Send(c.sessionID, domain.Event{
		Type:    domain.EventError,
		Payload: domain.ServerMessage{Message: message},
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// хаб закрыл канал
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
