package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/domain"
	domainerrors "github.com/booknook/booknook-server/internal/errors"
	"github.com/booknook/booknook-server/internal/store"
)

// AuthService handles local credential login.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates an authentication service.
func NewAuthService(st store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{store: st, tokenService: tokenService, logger: logger}
}

// LoginRequest contains local credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and its expiry.
type LoginResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Login verifies credentials and issues an access token. Unknown usernames
// and wrong passwords produce the same error so the response does not reveal
// which accounts exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	// Federated accounts have no local password.
	if user.PasswordHash == "" {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Warn("failed login attempt", "username", req.Username)
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return &LoginResponse{
		User:        user,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.tokenService.AccessTokenDuration()),
	}, nil
}
