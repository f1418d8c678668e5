package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"station_chat/pkg/logger"
)

type Repositories struct {
	Chat      ChatRepository
	RateLimit RateLimitRepository
	ChatLog   ChatLogRepository
	Audit     AuditRepository
	Player    PlayerRepository
	Login     LoginAttemptRepository
}

func NewRepositories(db *pgxpool.Pool, rdb *redis.Client, sessions SessionLookup, log logger.Logger) *Repositories {
	repos := &Repositories{
		Chat:      NewChatRepository(sessions, log),
		RateLimit: NewRateLimitRepository(log),
		ChatLog:   NewChatLogRepository(rdb, log),
		Audit:     NewAuditRepository(db, log),
		Player:    NewPlayerRepository(db, log),
		Login:     NewLoginAttemptRepository(rdb, log),
	}

	log.Info("Repositories initialized")

	return repos
}
