package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/domain"
	domainerrors "github.com/booknook/booknook-server/internal/errors"
	"github.com/booknook/booknook-server/internal/id"
	"github.com/booknook/booknook-server/internal/store"
)

// RegistrationService creates local accounts.
type RegistrationService struct {
	store  store.Store
	logger *slog.Logger
}

// NewRegistrationService creates a registration service.
func NewRegistrationService(st store.Store, logger *slog.Logger) *RegistrationService {
	return &RegistrationService{store: st, logger: logger}
}

// RegisterRequest contains local account registration data. Roles is a list
// of role tokens; anything other than "admin" maps to the standard role.
type RegisterRequest struct {
	Username    string   `json:"username" validate:"required,min=3,max=20"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string   `json:"display_name,omitempty" validate:"max=128"`
	Roles       []string `json:"roles,omitempty" validate:"max=8,dive,max=32"`
}

// Register creates a local account with the standard role and the three
// starter shelves, atomically. Username and email must both be unused.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		ID:           userID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
		AuthProvider: domain.AuthProviderLocal,
		Roles:        mapRoleTokens(req.Roles),
	}

	err = s.store.CreateUserWithShelves(ctx, user, domain.DefaultShelves(userID))
	switch {
	case errors.Is(err, store.ErrUsernameExists):
		return nil, domainerrors.AlreadyExists("username already taken")
	case errors.Is(err, store.ErrEmailExists):
		return nil, domainerrors.AlreadyExists("email already in use")
	case err != nil:
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "username", user.Username)
	return user, nil
}

// mapRoleTokens maps free-form role tokens to roles, deduped. An empty list
// grants the standard role.
func mapRoleTokens(tokens []string) []domain.Role {
	if len(tokens) == 0 {
		return []domain.Role{domain.RoleUser}
	}
	roles := make([]domain.Role, 0, len(tokens))
	for _, token := range tokens {
		role := domain.RoleFromName(token)
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	return roles
}
