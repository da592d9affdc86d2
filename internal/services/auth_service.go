package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"chatsync/internal/config"
	"chatsync/internal/domain/user"
	"chatsync/internal/repository"
	chatsync_errors "chatsync/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates access tokens. Registration and the wider
// account lifecycle are owned by a separate service; this one only needs
// enough to authenticate socket and REST callers.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
		accessTTL: cfg.Auth.AccessTokenTTL,
	}
}

type AccessClaims struct {
	UserID      string `json:"sub"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Login verifies credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AuthResponse{}, chatsync_errors.ErrInvalidInput
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, chatsync_errors.ErrNotFound) {
			return AuthResponse{}, chatsync_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return AuthResponse{}, chatsync_errors.ErrUnauthorized
	}

	token, err := s.issueToken(u)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User: UserInfo{
			ID:          u.ID.String(),
			Username:    u.Username,
			DisplayName: u.DisplayName,
		},
	}, nil
}

// ParseAccessToken validates a token and returns its claims.
func (s *AuthService) ParseAccessToken(token string) (AccessClaims, error) {
	claims := AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chatsync_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return AccessClaims{}, chatsync_errors.ErrUnauthorized
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return AccessClaims{}, chatsync_errors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) issueToken(u user.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:      u.ID.String(),
		DisplayName: u.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
