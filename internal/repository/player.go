package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"station_chat/internal/domain"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

const pgUniqueViolation = "23505"

// PlayerRepository - каталог игроков, разрешает username в user id
type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByUsername(ctx context.Context, username string) (*domain.Player, error)
	TouchLastSeen(ctx context.Context, id uuid.UUID) error
}

type playerRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewPlayerRepository(db *pgxpool.Pool, log logger.Logger) PlayerRepository {
	return &playerRepository{db: db, log: log}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	query := `
		INSERT INTO players (id, username, username_key, password_hash, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		player.ID, player.Username, normalizeUsername(player.Username), player.PasswordHash,
		player.CreatedAt, player.LastSeenAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.ErrUsernameTaken
		}
		r.log.Error("Failed to create player", "error", err, "username", player.Username)
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

func (r *playerRepository) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	query := `
		SELECT id, username, password_hash, created_at, last_seen_at
		FROM players
		WHERE username_key = $1
	`

	player := &domain.Player{}
	err := r.db.QueryRow(ctx, query, normalizeUsername(username)).Scan(
		&player.ID, &player.Username, &player.PasswordHash, &player.CreatedAt, &player.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get player", "error", err, "username", username)
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (r *playerRepository) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE players SET last_seen_at = NOW() WHERE id = $1`, id); err != nil {
		r.log.Error("Failed to update player last seen", "error", err, "player_id", id)
		return fmt.Errorf("failed to update player last seen: %w", err)
	}
	return nil
}
