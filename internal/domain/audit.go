package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog - запись о действии модератора
type AuditLog struct {
	ID          int64                  `json:"id"`
	EventTime   time.Time              `json:"event_time"`
	ActorUserID *uuid.UUID             `json:"actor_user_id,omitempty"`
	ActorName   string                 `json:"actor_name"`
	ActorRole   string                 `json:"actor_role"`
	EventType   string                 `json:"event_type"`
	Payload     map[string]interface{} `json:"payload"`
}

const (
	ActorRoleAdmin  = "admin"
	ActorRoleSystem = "system"
)

const (
	EventTypeMessagePatched = "CHAT_MESSAGE_PATCHED"
	EventTypeMessageDeleted = "CHAT_MESSAGE_DELETED"
	EventTypeUserNuked      = "CHAT_USER_NUKED"
	EventTypeRoundRestarted = "ROUND_RESTARTED"
	EventTypeReplayFinished = "REPLAY_RECORDING_FINISHED"
)
