package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"station_chat/internal/config"
	"station_chat/internal/domain"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/jwt"
	"station_chat/pkg/logger"
)

// AdminAuthService выдает access-токены для API модерации
type AdminAuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
}

type adminAuthService struct {
	adminCfg config.AdminConfig
	jwtCfg   config.JWTConfig
	log      logger.Logger
}

func NewAdminAuthService(adminCfg config.AdminConfig, jwtCfg config.JWTConfig, log logger.Logger) AdminAuthService {
	return &adminAuthService{
		adminCfg: adminCfg,
		jwtCfg:   jwtCfg,
		log:      log,
	}
}

// AdminUserID - стабильный идентификатор учетной записи модератора
func AdminUserID(username string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("station-chat-admin:"+strings.ToLower(username)))
}

func (s *adminAuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	username = strings.TrimSpace(username)

	if s.adminCfg.PasswordHash == "" {
		s.log.Warn("Admin login attempted but no password hash configured")
		return nil, apperrors.ErrForbidden
	}
	if username == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Не раскрываем, что именно не совпало
	userOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(username)), []byte(strings.ToLower(s.adminCfg.Username))) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.adminCfg.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		s.log.Info("Admin login failed", "username", username)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := jwt.GenerateAccessToken(AdminUserID(s.adminCfg.Username), s.adminCfg.Username, domain.ActorRoleAdmin,
		s.jwtCfg.AccessSecret, s.jwtCfg.Issuer, s.jwtCfg.AccessTTL)
	if err != nil {
		s.log.Error("Failed to generate access token", "error", err)
		return nil, apperrors.ErrInternalServer
	}

	s.log.Info("Admin logged in", "username", s.adminCfg.Username)
	return &LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtCfg.AccessTTL.Seconds()),
		Username:    s.adminCfg.Username,
	}, nil
}

func (s *adminAuthService) ValidateToken(tokenString string) (*jwt.Claims, error) {
	claims, err := parseAccessToken(tokenString, s.jwtCfg.AccessSecret)
	if err != nil {
		return nil, err
	}
	if claims.Role != domain.ActorRoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	return claims, nil
}

func parseAccessToken(tokenString, secret string) (*jwt.Claims, error) {
	claims, err := jwt.ParseAccessToken(tokenString, secret)
	if err != nil {
		if jwt.IsExpired(err) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
