package auth

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknook/booknook-server/internal/domain"
)

func testKeyHex(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return hex.EncodeToString(key)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(t), time.Hour)
	require.NoError(t, err)

	user := &domain.User{
		ID:       "user-abc",
		Username: "marguerite",
		Roles:    []domain.Role{domain.RoleUser, domain.RoleAdmin},
	}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-abc", claims.UserID)
	assert.Equal(t, "marguerite", claims.Username)
	assert.Equal(t, []string{"USER", "ADMIN"}, claims.Roles)
	assert.Equal(t, "user-abc", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(t), -time.Minute)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(&domain.User{ID: "user-1", Username: "al"})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_WrongKey(t *testing.T) {
	svc1, err := NewTokenService(testKeyHex(t), time.Hour)
	require.NoError(t, err)

	otherKey := make([]byte, 32)
	for i := range otherKey {
		otherKey[i] = byte(255 - i)
	}
	svc2, err := NewTokenService(hex.EncodeToString(otherKey), time.Hour)
	require.NoError(t, err)

	token, err := svc1.GenerateAccessToken(&domain.User{ID: "user-1", Username: "al"})
	require.NoError(t, err)

	_, err = svc2.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsBadKeyLength(t *testing.T) {
	_, err := NewTokenService("abcd", time.Hour)
	assert.Error(t, err)
}

func TestAccessClaims_Principal(t *testing.T) {
	claims := &AccessClaims{
		UserID:   "user-1",
		Username: "al",
		Roles:    []string{"USER", "ADMIN"},
	}

	p := claims.Principal()
	require.NotNil(t, p.Local)
	assert.Nil(t, p.Federated)
	assert.False(t, p.IsFederated())
	assert.True(t, p.HasAuthority(AuthorityUser))
	assert.True(t, p.HasAuthority(AuthorityAdmin))
}

func TestAccessClaims_PrincipalStandardUser(t *testing.T) {
	claims := &AccessClaims{UserID: "user-1", Username: "al", Roles: []string{"USER"}}

	p := claims.Principal()
	assert.True(t, p.HasAuthority(AuthorityUser))
	assert.False(t, p.HasAuthority(AuthorityAdmin))
}
