package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/search"
	"github.com/booknook/booknook-server/internal/store/sqlite"
)

// testEnv bundles the real store and index the services run against.
type testEnv struct {
	store  *sqlite.Store
	index  *search.Index
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.NewIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return &testEnv{store: st, index: idx, logger: logger}
}

func (e *testEnv) seedUser(t *testing.T, userID, username string) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		ID:           userID,
		Username:     username,
		Email:        username + "@example.com",
		AuthProvider: domain.AuthProviderLocal,
		Roles:        []domain.Role{domain.RoleUser},
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) seedBook(t *testing.T, bookID, title string, price float64) *domain.Book {
	t.Helper()
	now := time.Now()
	book := &domain.Book{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        bookID,
		Title:     title,
		Author:    "Seed Author",
		Price:     price,
	}
	require.NoError(t, e.store.CreateBook(context.Background(), book))
	return book
}
