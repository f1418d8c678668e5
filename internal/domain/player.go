package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player - строка каталога игроков (username -> user id)
type Player struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// Роли в токене игрока
const (
	RolePlayer    = "player"
	RoleGameAdmin = "game_admin"
)
