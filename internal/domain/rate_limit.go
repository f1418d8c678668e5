package domain

import (
	"time"
)

// RateLimitState - состояние ограничителя для одной сессии
type RateLimitState struct {
	WindowExpiresAt   time.Time
	MessageCount      int
	CharacterCount    int
	Warned            bool
	NextAdminAnnounce time.Time
}
