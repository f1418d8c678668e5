package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"station_chat/internal/domain"
	"station_chat/pkg/logger"
)

const (
	// TTL журнала чата - 6 часов
	ChatLogTTL = 6 * time.Hour

	ChatLogKey = "chat:round:log"
)

// ChatLogRepository - зеркало сообщений раунда в Redis для панели модерации.
// Источник истины - ChatRepository, журнал только отражает его события.
type ChatLogRepository interface {
	Append(ctx context.Context, record domain.ChatRecord) error
	UpdateText(ctx context.Context, id domain.RecordID, text string, patchedAt time.Time) error
	Remove(ctx context.Context, ids ...domain.RecordID) error
	// List возвращает последние limit сообщений в хронологическом порядке
	List(ctx context.Context, limit int) ([]domain.ChatRecord, error)
	Clear(ctx context.Context) error
}

type chatLogRepository struct {
	rdb redis.UniversalClient
	log logger.Logger
}

func NewChatLogRepository(rdb redis.UniversalClient, log logger.Logger) ChatLogRepository {
	return &chatLogRepository{
		rdb: rdb,
		log: log,
	}
}

func scoreOf(id domain.RecordID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (r *chatLogRepository) Append(ctx context.Context, record domain.ChatRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		r.log.Error("Failed to marshal chat record", "error", err)
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Идентификатор записи используется как score
	err = r.rdb.ZAdd(ctx, ChatLogKey, redis.Z{
		Score:  float64(record.ID),
		Member: recordJSON,
	}).Err()
	if err != nil {
		r.log.Error("Failed to append chat record to Redis", "error", err, "id", record.ID)
		return fmt.Errorf("failed to append record: %w", err)
	}

	if err := r.rdb.Expire(ctx, ChatLogKey, ChatLogTTL).Err(); err != nil {
		r.log.Warn("Failed to set TTL on chat log", "error", err)
		// Не критичная ошибка, продолжаем
	}

	return nil
}

func (r *chatLogRepository) get(ctx context.Context, id domain.RecordID) (*domain.ChatRecord, error) {
	members, err := r.rdb.ZRangeByScore(ctx, ChatLogKey, &redis.ZRangeBy{
		Min: scoreOf(id),
		Max: scoreOf(id),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	var record domain.ChatRecord
	if err := json.Unmarshal([]byte(members[0]), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &record, nil
}

func (r *chatLogRepository) UpdateText(ctx context.Context, id domain.RecordID, text string, patchedAt time.Time) error {
	record, err := r.get(ctx, id)
	if err != nil {
		r.log.Error("Failed to load chat record for update", "error", err, "id", id)
		return err
	}
	if record == nil {
		// Запись могла истечь по TTL
		r.log.Debug("Chat record missing from log, skipping patch", "id", id)
		return nil
	}

	record.Text = text
	record.PatchedAt = &patchedAt

	if err := r.Remove(ctx, id); err != nil {
		return err
	}
	return r.Append(ctx, *record)
}

func (r *chatLogRepository) Remove(ctx context.Context, ids ...domain.RecordID) error {
	if len(ids) == 0 {
		return nil
	}

	pipe := r.rdb.TxPipeline()
	for _, id := range ids {
		pipe.ZRemRangeByScore(ctx, ChatLogKey, scoreOf(id), scoreOf(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to remove chat records from Redis", "error", err, "count", len(ids))
		return fmt.Errorf("failed to remove records: %w", err)
	}
	return nil
}

func (r *chatLogRepository) List(ctx context.Context, limit int) ([]domain.ChatRecord, error) {
	// Последние N сообщений (от новых к старым)
	membersJSON, err := r.rdb.ZRevRange(ctx, ChatLogKey, 0, int64(limit-1)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.ChatRecord{}, nil
		}
		r.log.Error("Failed to list chat log", "error", err)
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]domain.ChatRecord, 0, len(membersJSON))
	for _, memberJSON := range membersJSON {
		var record domain.ChatRecord
		if err := json.Unmarshal([]byte(memberJSON), &record); err != nil {
			r.log.Warn("Failed to unmarshal chat record", "error", err)
			continue
		}
		records = append(records, record)
	}

	// Разворачиваем в хронологический порядок
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}

func (r *chatLogRepository) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, ChatLogKey).Err(); err != nil {
		r.log.Error("Failed to clear chat log", "error", err)
		return fmt.Errorf("failed to clear chat log: %w", err)
	}
	return nil
}
