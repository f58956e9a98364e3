package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/config"
	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/search"
	"github.com/booknook/booknook-server/internal/service"
	"github.com/booknook/booknook-server/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
	st           *sqlite.Store
}

// setupTestServer creates a server backed by a real store and index.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(tmpDir+"/test.db", logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	index, err := search.NewIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	keyHex, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(keyHex, 15*time.Minute)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:       "0",
			CORSOrigin: "http://localhost:5173",
		},
	}

	services := &Services{
		Identity:     service.NewIdentityService(st, "federated", logger),
		Registration: service.NewRegistrationService(st, logger),
		Auth:         service.NewAuthService(st, tokenService, logger),
		Catalog:      service.NewCatalogService(st, index, logger),
		Shelf:        service.NewShelfService(st, logger),
		Review:       service.NewReviewService(st, logger),
	}

	s := NewServer(cfg, st, index, tokenService, nil, services, logger)

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, s.api),
		tokenService: tokenService,
		st:           st,
	}
}

// registerAndLogin creates a local account and returns its token and user ID.
func (ts *testServer) registerAndLogin(t *testing.T, username string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": username,
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.AccessToken, envelope.Data.User.ID
}

// seedAdmin creates an admin account directly and returns a token for it.
func (ts *testServer) seedAdmin(t *testing.T, username string) (token, userID string) {
	t.Helper()

	now := time.Now()
	user := &domain.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		ID:           "user-" + username,
		Username:     username,
		Email:        username + "@example.com",
		AuthProvider: domain.AuthProviderLocal,
		Roles:        []domain.Role{domain.RoleUser, domain.RoleAdmin},
	}
	require.NoError(t, ts.st.CreateUser(context.Background(), user))

	tok, err := ts.tokenService.GenerateAccessToken(user)
	require.NoError(t, err)
	return tok, user.ID
}

// createTestBook seeds a catalog entry directly.
func (ts *testServer) createTestBook(t *testing.T, bookID, title string, price float64) {
	t.Helper()

	now := time.Now()
	book := &domain.Book{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        bookID,
		Title:     title,
		Author:    "Test Author",
		Price:     price,
	}
	require.NoError(t, ts.st.CreateBook(context.Background(), book))
}
