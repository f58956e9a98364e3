package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/domain"
	domainerrors "github.com/booknook/booknook-server/internal/errors"
	"github.com/booknook/booknook-server/internal/id"
	"github.com/booknook/booknook-server/internal/store"
)

// IdentityService resolves the request principal to a stored account.
// Local principals must already exist; federated principals are provisioned
// on first sight of a valid token.
type IdentityService struct {
	store    store.Store
	provider string // label stored in auth_provider for provisioned accounts
	logger   *slog.Logger
}

// NewIdentityService creates an identity service.
func NewIdentityService(st store.Store, provider string, logger *slog.Logger) *IdentityService {
	return &IdentityService{store: st, provider: provider, logger: logger}
}

// ResolveCurrentUser maps a verified principal to its account.
//
// Local principals resolve by username. Federated principals resolve by
// (provider, subject), where subject is the token's object ID when present
// and its subject claim otherwise; an unknown federated identity is
// provisioned as a new account.
func (s *IdentityService) ResolveCurrentUser(ctx context.Context, principal *auth.Principal) (*domain.User, error) {
	switch {
	case principal == nil:
		return nil, domainerrors.Unauthorized("authentication required")

	case principal.Local != nil:
		user, err := s.store.GetUserByUsername(ctx, principal.Local.Username)
		if errors.Is(err, store.ErrNotFound) {
			// The token outlived its account.
			return nil, domainerrors.Unauthorized("account no longer exists")
		}
		if err != nil {
			return nil, fmt.Errorf("resolve local user: %w", err)
		}
		return user, nil

	case principal.Federated != nil:
		return s.resolveFederated(ctx, principal.Federated)

	default:
		return nil, domainerrors.Unauthorized("authentication required")
	}
}

// resolveFederated finds or provisions the account for a federated identity.
func (s *IdentityService) resolveFederated(ctx context.Context, claims *auth.FederatedClaims) (*domain.User, error) {
	sub := claims.ProviderSubject()
	if sub == "" {
		return nil, domainerrors.Unauthorized("token carries no stable subject")
	}

	user, err := s.store.GetUserByAuthSub(ctx, s.provider, sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("resolve federated user: %w", err)
	}

	user, err = s.provisionFederated(ctx, claims, sub)
	if err == nil {
		return user, nil
	}

	// A concurrent request for the same identity may have won the insert.
	// The unique (auth_provider, auth_sub) index makes the race safe; retry
	// the lookup once. The loser's insert can also trip the email index when
	// both requests carry the same claims.
	if errors.Is(err, store.ErrAlreadyExists) || errors.Is(err, store.ErrEmailExists) {
		user, lookupErr := s.store.GetUserByAuthSub(ctx, s.provider, sub)
		if lookupErr != nil {
			return nil, fmt.Errorf("resolve federated user after race: %w", lookupErr)
		}
		return user, nil
	}
	return nil, err
}

// provisionFederated creates an account from token claims. Federated accounts
// do not get starter shelves; their shelves live with the identity provider's
// catalog client, not this server.
func (s *IdentityService) provisionFederated(ctx context.Context, claims *auth.FederatedClaims, sub string) (*domain.User, error) {
	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		ID:           userID,
		Username:     s.deriveUsername(claims, sub),
		Email:        claims.Email,
		DisplayName:  claims.Name,
		AuthProvider: s.provider,
		AuthSub:      sub,
		Roles:        rolesFromClaims(claims),
	}

	err = s.store.CreateUser(ctx, user)
	if errors.Is(err, store.ErrUsernameExists) {
		// Derived username collided with an existing account. Retry once
		// with a random suffix before giving up.
		user.Username = user.Username + "-" + uuid.NewString()[:8]
		err = s.store.CreateUser(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("provisioned federated account",
		"user_id", user.ID,
		"username", user.Username,
		"provider", s.provider,
	)
	return user, nil
}

// deriveUsername picks a username for a provisioned account: the token's
// preferred username when present, otherwise a name keyed to the subject.
func (s *IdentityService) deriveUsername(claims *auth.FederatedClaims, sub string) string {
	if name := strings.TrimSpace(claims.PreferredUsername); name != "" {
		return name
	}
	return s.provider + "-" + sub
}

// rolesFromClaims maps provider role names onto catalog roles.
func rolesFromClaims(claims *auth.FederatedClaims) []domain.Role {
	roles := []domain.Role{domain.RoleUser}
	for _, name := range claims.Roles {
		if domain.RoleFromName(strings.ToUpper(name)) == domain.RoleAdmin {
			roles = append(roles, domain.RoleAdmin)
			break
		}
	}
	return roles
}
