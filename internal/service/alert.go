package service

import (
	"context"
	"time"

	"station_chat/internal/domain"
	"station_chat/internal/queue"
	"station_chat/pkg/logger"
)

const alertBacklog = 64

// AlertService оповещает администраторов в игре и, если настроено, во внешнем канале
type AlertService interface {
	AlertAdmins(message string)
	// Run переносит оповещения в очередь задач; блокируется до отмены контекста
	Run(ctx context.Context)
}

type alertService struct {
	sessions  SessionDirectory
	transport Transport
	client    queue.Client
	queueName string
	pending   chan queue.Task
	now       func() time.Time
	log       logger.Logger
}

// NewAlertService: client может быть nil, тогда внешняя пересылка отключена
func NewAlertService(sessions SessionDirectory, transport Transport, client queue.Client, queueName string, log logger.Logger) AlertService {
	return &alertService{
		sessions:  sessions,
		transport: transport,
		client:    client,
		queueName: queueName,
		pending:   make(chan queue.Task, alertBacklog),
		now:       time.Now,
		log:       log,
	}
}

func (s *alertService) AlertAdmins(message string) {
	now := s.now()
	s.log.Warn("Admin alert", "message", message)

	event := domain.Event{
		Type:    domain.EventAdminAlert,
		Payload: domain.AdminAlert{Message: message, SentAt: now},
	}
	for _, admin := range s.sessions.Admins() {
		s.transport.Send(admin.ID, event)
	}

	if s.client == nil {
		return
	}

	task, err := queue.NewAdminAlertTask(message, now)
	if err != nil {
		s.log.Error("Failed to build admin alert task", "error", err)
		return
	}

	// Диспетчер не ждет Redis
	select {
	case s.pending <- task:
	default:
		s.log.Warn("Admin alert backlog full, dropping relay", "message", message)
	}
}

func (s *alertService) Run(ctx context.Context) {
	if s.client == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.pending:
			id, err := s.client.Enqueue(ctx, task, queue.EnqueueOption{
				Queue:    s.queueName,
				MaxRetry: 3,
				Timeout:  10 * time.Second,
			})
			if err != nil {
				s.log.Error("Failed to enqueue admin alert", "error", err)
				continue
			}
			s.log.Debug("Admin alert enqueued", "task_id", id)
		}
	}
}
