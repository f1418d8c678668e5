package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"station_chat/pkg/logger"
)

const loginAttemptsPrefix = "chat:admin:login:"

// LoginAttemptRepository считает попытки входа в API модерации
type LoginAttemptRepository interface {
	CheckLimit(ctx context.Context, key string, limit int) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type loginAttemptRepository struct {
	redis redis.UniversalClient
	log   logger.Logger
}

func NewLoginAttemptRepository(rdb redis.UniversalClient, log logger.Logger) LoginAttemptRepository {
	return &loginAttemptRepository{redis: rdb, log: log}
}

func (r *loginAttemptRepository) CheckLimit(ctx context.Context, key string, limit int) (bool, error) {
	count, err := r.redis.Get(ctx, loginAttemptsPrefix+key).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		r.log.Error("Failed to check login attempts", "error", err)
		return false, fmt.Errorf("failed to check login attempts: %w", err)
	}

	return count < limit, nil
}

func (r *loginAttemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.redis.TxPipeline()
	incr := pipe.Incr(ctx, loginAttemptsPrefix+key)
	pipe.ExpireNX(ctx, loginAttemptsPrefix+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to increment login attempts", "error", err)
		return 0, fmt.Errorf("failed to increment login attempts: %w", err)
	}

	return incr.Val(), nil
}
