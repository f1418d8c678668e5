package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"station_chat/internal/config"
	"station_chat/internal/domain"
	"station_chat/internal/repository"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/jwt"
	"station_chat/pkg/logger"
)

const (
	maxPlayerNameLength = 32
	minPasswordLength   = 8
)

// PlayerIdentity - проверенная личность игрока из токена
type PlayerIdentity struct {
	ID      uuid.UUID
	Name    string
	IsAdmin bool
}

// PlayerAuthService регистрирует игроков и выдает токены для /ws/chat
type PlayerAuthService interface {
	Register(ctx context.Context, username, password string) (*domain.Player, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*PlayerIdentity, error)
}

type playerAuthService struct {
	playerRepo   repository.PlayerRepository
	adminPlayers map[string]bool
	jwtCfg       config.JWTConfig
	hashCost     int
	log          logger.Logger
}

func NewPlayerAuthService(playerRepo repository.PlayerRepository, adminPlayers []string, jwtCfg config.JWTConfig, log logger.Logger) PlayerAuthService {
	admins := make(map[string]bool, len(adminPlayers))
	for _, name := range adminPlayers {
		admins[nameKey(name)] = true
	}

	return &playerAuthService{
		playerRepo:   playerRepo,
		adminPlayers: admins,
		jwtCfg:       jwtCfg,
		hashCost:     bcrypt.DefaultCost,
		log:          log,
	}
}

func (s *playerAuthService) Register(ctx context.Context, username, password string) (*domain.Player, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxPlayerNameLength {
		return nil, fmt.Errorf("username must be 1-%d characters: %w", maxPlayerNameLength, apperrors.ErrBadRequest)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, apperrors.ErrBadRequest)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		s.log.Error("Failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	player := &domain.Player{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(passwordHash),
		CreatedAt:    now,
		LastSeenAt:   now,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	s.log.Info("Player registered", "player_id", player.ID, "username", player.Username)

	// Убираем хеш из ответа
	player.PasswordHash = ""
	return player, nil
}

func (s *playerAuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	player, err := s.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if player.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)) != nil {
		s.log.Info("Player login failed", "username", username)
		return nil, apperrors.ErrInvalidCredentials
	}

	role := domain.RolePlayer
	if s.adminPlayers[nameKey(player.Username)] {
		role = domain.RoleGameAdmin
	}

	token, err := jwt.GenerateAccessToken(player.ID, player.Username, role,
		s.jwtCfg.AccessSecret, s.jwtCfg.Issuer, s.jwtCfg.AccessTTL)
	if err != nil {
		s.log.Error("Failed to generate access token", "error", err)
		return nil, apperrors.ErrInternalServer
	}

	if err := s.playerRepo.TouchLastSeen(ctx, player.ID); err != nil {
		s.log.Warn("Failed to update last seen", "error", err, "player_id", player.ID)
	}

	return &LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtCfg.AccessTTL.Seconds()),
		Username:    player.Username,
	}, nil
}

func (s *playerAuthService) ValidateToken(tokenString string) (*PlayerIdentity, error) {
	claims, err := parseAccessToken(tokenString, s.jwtCfg.AccessSecret)
	if err != nil {
		return nil, err
	}
	if claims.Role != domain.RolePlayer && claims.Role != domain.RoleGameAdmin {
		return nil, apperrors.ErrForbidden
	}
	return &PlayerIdentity{
		ID:      claims.UserID,
		Name:    claims.Username,
		IsAdmin: claims.Role == domain.RoleGameAdmin,
	}, nil
}
