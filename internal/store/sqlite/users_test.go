package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/store"
)

// makeTestUser creates a local domain.User with sensible defaults.
func makeTestUser(userID, username string) *domain.User {
	now := time.Now()
	return &domain.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		ID:           userID,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$fakehashfortest",
		AuthProvider: domain.AuthProviderLocal,
		Roles:        []domain.Role{domain.RoleUser},
	}
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := makeTestUser("user-1", "alice")
	user.Roles = []domain.Role{domain.RoleUser, domain.RoleAdmin}

	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}

	if got.Username != "alice" {
		t.Errorf("Username: got %q, want %q", got.Username, "alice")
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Email: got %q, want %q", got.Email, "alice@example.com")
	}
	if got.PasswordHash != user.PasswordHash {
		t.Errorf("PasswordHash: got %q, want %q", got.PasswordHash, user.PasswordHash)
	}
	if got.AuthProvider != domain.AuthProviderLocal {
		t.Errorf("AuthProvider: got %q", got.AuthProvider)
	}
	if len(got.Roles) != 2 {
		t.Fatalf("Roles: got %v, want two roles", got.Roles)
	}
	if !got.HasRole(domain.RoleAdmin) || !got.HasRole(domain.RoleUser) {
		t.Errorf("Roles: got %v", got.Roles)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "user-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("user-1", "alice")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dup := makeTestUser("user-2", "alice")
	dup.Email = "other@example.com"
	err := s.CreateUser(ctx, dup)
	if !errors.Is(err, store.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("user-1", "alice")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dup := makeTestUser("user-2", "bob")
	dup.Email = "alice@example.com"
	err := s.CreateUser(ctx, dup)
	if !errors.Is(err, store.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("user-1", "alice")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID: got %q", got.ID)
	}

	// Lookup is exact, not caseless.
	if _, err := s.GetUserByUsername(ctx, "ALICE"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for different case, got %v", err)
	}
}

func TestGetUserByAuthSub(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fed := makeTestUser("user-1", "pat")
	fed.AuthProvider = "federated"
	fed.AuthSub = "oid-123"
	fed.PasswordHash = ""
	if err := s.CreateUser(ctx, fed); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUserByAuthSub(ctx, "federated", "oid-123")
	if err != nil {
		t.Fatalf("GetUserByAuthSub: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID: got %q", got.ID)
	}

	if _, err := s.GetUserByAuthSub(ctx, "federated", "oid-999"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetUserByAuthSub(ctx, "other-provider", "oid-123"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other provider, got %v", err)
	}
}

func TestCreateUser_DuplicateAuthSub(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := makeTestUser("user-1", "pat")
	first.AuthProvider = "federated"
	first.AuthSub = "oid-123"
	if err := s.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	second := makeTestUser("user-2", "pat2")
	second.Email = "pat2@example.com"
	second.AuthProvider = "federated"
	second.AuthSub = "oid-123"
	err := s.CreateUser(ctx, second)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateUserWithShelves(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := makeTestUser("user-1", "alice")
	shelves := domain.DefaultShelves(user.ID)

	if err := s.CreateUserWithShelves(ctx, user, shelves); err != nil {
		t.Fatalf("CreateUserWithShelves: %v", err)
	}

	got, err := s.ListShelvesByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListShelvesByOwner: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 starter shelves, got %d", len(got))
	}
	for _, sh := range got {
		if sh.ID == "" {
			t.Error("shelf should have a generated ID")
		}
		if !sh.Public {
			t.Errorf("shelf %q should be public", sh.Name)
		}
	}
}

func TestCreateUserWithShelves_RollsBackOnConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("user-1", "alice")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Same username: the insert fails and no shelves may survive.
	dup := makeTestUser("user-2", "alice")
	dup.Email = "dup@example.com"
	err := s.CreateUserWithShelves(ctx, dup, domain.DefaultShelves("user-2"))
	if !errors.Is(err, store.ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}

	shelves, err := s.ListShelvesByOwner(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListShelvesByOwner: %v", err)
	}
	if len(shelves) != 0 {
		t.Errorf("expected no shelves after rollback, got %d", len(shelves))
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := makeTestUser("user-1", "alice")
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	user.DisplayName = "Alice A."
	user.Roles = []domain.Role{domain.RoleUser, domain.RoleAdmin}
	user.UpdatedAt = time.Now()
	if err := s.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.DisplayName != "Alice A." {
		t.Errorf("DisplayName: got %q", got.DisplayName)
	}
	if !got.HasRole(domain.RoleAdmin) {
		t.Errorf("expected admin role after update, got %v", got.Roles)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateUser(context.Background(), makeTestUser("user-ghost", "ghost"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, u := range []*domain.User{
		makeTestUser("user-1", "alice"),
		makeTestUser("user-2", "bob"),
	} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser %s: %v", u.ID, err)
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if len(u.Roles) == 0 {
			t.Errorf("user %s should have roles loaded", u.ID)
		}
	}
}
