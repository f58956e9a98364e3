package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/domain"
	domainerrors "github.com/booknook/booknook-server/internal/errors"
)

// pasetoPrefix marks locally issued access tokens. Anything else on the
// Bearer header is treated as a federated provider token.
const pasetoPrefix = "v4.local."

// authenticateRequest validates the Authorization header and resolves the
// account behind it. Local tokens must reference an existing account;
// federated tokens provision one on first sight.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.User, error) {
	principal, err := s.verifyBearer(ctx, authHeader)
	if err != nil {
		return nil, err
	}
	return s.services.Identity.ResolveCurrentUser(ctx, principal)
}

// authenticateAndRequireAdmin validates the token and requires admin role.
func (s *Server) authenticateAndRequireAdmin(ctx context.Context, authHeader string) (*domain.User, error) {
	user, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, domainerrors.Forbidden("admin access required")
	}
	return user, nil
}

// verifyBearer parses the Authorization header and verifies the token on
// whichever trust path matches its format.
func (s *Server) verifyBearer(ctx context.Context, authHeader string) (*auth.Principal, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}
	token := parts[1]

	if strings.HasPrefix(token, pasetoPrefix) {
		claims, err := s.tokenService.VerifyAccessToken(token)
		if err != nil {
			return nil, huma.Error401Unauthorized("Invalid or expired token")
		}
		return claims.Principal(), nil
	}

	if s.federated == nil {
		return nil, huma.Error401Unauthorized("Federated tokens are not accepted")
	}
	claims, err := s.federated.Verify(ctx, token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}
	return &auth.Principal{Federated: claims}, nil
}

// extractIP returns the client IP from forwarding headers, first hop wins.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
