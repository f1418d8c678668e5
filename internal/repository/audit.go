package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

type AuditRepository interface {
	CreateLog(ctx context.Context, log *domain.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}

type auditRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewAuditRepository(db *pgxpool.Pool, log logger.Logger) AuditRepository {
	return &auditRepository{db: db, log: log}
}

func (r *auditRepository) CreateLog(ctx context.Context, auditLog *domain.AuditLog) error {
	query := `
		INSERT INTO chat_audit_log (event_time, actor_user_id, actor_name, actor_role, event_type, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		auditLog.EventTime, auditLog.ActorUserID, auditLog.ActorName,
		auditLog.ActorRole, auditLog.EventType, auditLog.Payload,
	).Scan(&auditLog.ID)

	if err != nil {
		r.log.Error("Failed to create audit log", "error", err, "event_type", auditLog.EventType)
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, event_time, actor_user_id, actor_name, actor_role, event_type, payload
		FROM chat_audit_log
		ORDER BY event_time DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to list audit log", "error", err)
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		entry := &domain.AuditLog{}
		if err := rows.Scan(
			&entry.ID, &entry.EventTime, &entry.ActorUserID, &entry.ActorName,
			&entry.ActorRole, &entry.EventType, &entry.Payload,
		); err != nil {
			r.log.Error("Failed to scan audit log", "error", err)
			return nil, err
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}
