package domain

import (
	"math"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionConnected SessionStatus = "connected"
	SessionInGame    SessionStatus = "in_game"
)

// Session - подключенный игрок
type Session struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Status   SessionStatus `json:"status"`
	IsAdmin  bool          `json:"is_admin"`
	Attached ActorID       `json:"attached,omitempty"`
	// Generation растет с каждым подключением, устаревшие отключения игнорируются
	Generation uint64 `json:"-"`
}

type Position struct {
	MapID int     `json:"map_id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Distance возвращает расстояние; ok=false если карты разные
func (p Position) Distance(o Position) (float64, bool) {
	if p.MapID != o.MapID {
		return 0, false
	}
	return math.Hypot(p.X-o.X, p.Y-o.Y), true
}

// Entity - снимок сущности из симуляции мира
type Entity struct {
	ID       ActorID  `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Alive    bool     `json:"alive"`
	Ghost    bool     `json:"ghost"`
	Radio    []string `json:"radio,omitempty"`
	Language string   `json:"language,omitempty"`
	Known    []string `json:"known,omitempty"`
	Accent   string   `json:"accent,omitempty"`
}

func (e Entity) HasRadio(frequency string) bool {
	for _, f := range e.Radio {
		if f == frequency {
			return true
		}
	}
	return false
}

func (e Entity) Understands(language string) bool {
	if language == "" || language == e.Language {
		return true
	}
	for _, l := range e.Known {
		if l == language {
			return true
		}
	}
	return false
}

// DistributionCandidate - потенциальный получатель до мутаций
type DistributionCandidate struct {
	Session  Session
	Entity   *Entity
	Distance float64
	Observer bool
}

// DistributionTarget - копия записи для конкретного получателя, не сохраняется
type DistributionTarget struct {
	Session     uuid.UUID
	Text        string
	SpeakerName string
}
