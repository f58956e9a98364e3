package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username":     "alice",
		"email":        "alice@example.com",
		"password":     "TestPassword123!",
		"display_name": "Alice",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, 1, envelope.V)
	assert.Equal(t, "alice", envelope.Data.Username)
	assert.Equal(t, "local", envelope.Data.AuthProvider)
	assert.Equal(t, []string{"USER"}, envelope.Data.Roles)
	assert.NotEmpty(t, envelope.Data.ID)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "bob")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "bob",
		"email":    "bob2@example.com",
		"password": "TestPassword123!",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestRegister_ValidationError(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "ab",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION", envelope.Code)
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "carol")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": "carol",
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Equal(t, "carol", envelope.Data.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "dave")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": "dave",
		"password": "WrongPassword!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": "nobody",
		"password": "TestPassword123!",
	})
	// Unknown usernames and wrong passwords produce the same error.
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "erin")

	var lastCode int
	for range 30 {
		resp := ts.api.Post("/api/v1/auth/login",
			map[string]any{"username": "erin", "password": "WrongPassword!"},
			"X-Real-IP: 203.0.113.9")
		lastCode = resp.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
