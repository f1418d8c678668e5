package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

const TypeAdminAlert = "chat:admin_alert"

// AdminAlertPayload - оповещение администраторов для внешнего канала
type AdminAlertPayload struct {
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

func NewAdminAlertTask(message string, sentAt time.Time) (Task, error) {
	payload, err := json.Marshal(AdminAlertPayload{Message: message, SentAt: sentAt})
	if err != nil {
		return Task{}, fmt.Errorf("failed to marshal admin alert: %w", err)
	}
	return Task{Type: TypeAdminAlert, Payload: payload}, nil
}

func ParseAdminAlert(task Task) (AdminAlertPayload, error) {
	var payload AdminAlertPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal admin alert: %w", err)
	}
	return payload, nil
}
