package service

import (
	"context"
	"time"

	"station_chat/internal/domain"
	"station_chat/internal/repository"
	"station_chat/pkg/logger"
)

const mirrorBacklog = 1024

type mirrorOp func(ctx context.Context) error

// ChatLogMirror повторяет события хранилища в Redis вне горутины диспетчера
type ChatLogMirror struct {
	chatLogRepo repository.ChatLogRepository
	ops         chan mirrorOp
	now         func() time.Time
	log         logger.Logger
}

func NewChatLogMirror(chatLogRepo repository.ChatLogRepository, log logger.Logger) *ChatLogMirror {
	return &ChatLogMirror{
		chatLogRepo: chatLogRepo,
		ops:         make(chan mirrorOp, mirrorBacklog),
		now:         time.Now,
		log:         log,
	}
}

func (m *ChatLogMirror) OnRecordEvent(event domain.RecordEvent) {
	var op mirrorOp

	switch e := event.(type) {
	case domain.RecordCreated:
		record := e.Record
		op = func(ctx context.Context) error { return m.chatLogRepo.Append(ctx, record) }
	case domain.RecordPatched:
		id, text, at := e.ID, e.Text, m.now()
		op = func(ctx context.Context) error { return m.chatLogRepo.UpdateText(ctx, id, text, at) }
	case domain.RecordDeleted:
		id := e.ID
		op = func(ctx context.Context) error { return m.chatLogRepo.Remove(ctx, id) }
	case domain.RecordsNuked:
		ids := append([]domain.RecordID(nil), e.IDs...)
		op = func(ctx context.Context) error { return m.chatLogRepo.Remove(ctx, ids...) }
	case domain.RepositoryRefreshed:
		op = func(ctx context.Context) error { return m.chatLogRepo.Clear(ctx) }
	default:
		return
	}

	select {
	case m.ops <- op:
	default:
		m.log.Warn("Chat log mirror backlog full, dropping event")
	}
}

// Run применяет операции по порядку до отмены контекста
func (m *ChatLogMirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-m.ops:
			opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := op(opCtx); err != nil {
				m.log.Error("Failed to mirror chat event", "error", err)
			}
			cancel()
		}
	}
}
