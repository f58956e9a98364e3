package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/domain"
	domainerrors "github.com/booknook/booknook-server/internal/errors"
)

func newTestIdentityService(t *testing.T) (*IdentityService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewIdentityService(env.store, "entra", env.logger), env
}

func TestResolveCurrentUser_NilPrincipal(t *testing.T) {
	svc, _ := newTestIdentityService(t)

	_, err := svc.ResolveCurrentUser(context.Background(), nil)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestResolveCurrentUser_Local(t *testing.T) {
	svc, env := newTestIdentityService(t)
	seeded := env.seedUser(t, "user-local1", "alice")

	principal := &auth.Principal{
		Local: &auth.LocalPrincipal{UserID: seeded.ID, Username: "alice"},
	}
	user, err := svc.ResolveCurrentUser(context.Background(), principal)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestResolveCurrentUser_LocalAccountGone(t *testing.T) {
	svc, _ := newTestIdentityService(t)

	principal := &auth.Principal{
		Local: &auth.LocalPrincipal{UserID: "user-ghost", Username: "ghost"},
	}
	_, err := svc.ResolveCurrentUser(context.Background(), principal)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestResolveCurrentUser_FederatedProvisions(t *testing.T) {
	svc, _ := newTestIdentityService(t)
	ctx := context.Background()

	principal := &auth.Principal{
		Federated: &auth.FederatedClaims{
			Subject:           "sub-123",
			ObjectID:          "oid-456",
			PreferredUsername: "bob@corp.example",
			Name:              "Bob Builder",
			Email:             "bob@corp.example",
		},
	}

	user, err := svc.ResolveCurrentUser(ctx, principal)
	require.NoError(t, err)
	assert.Equal(t, "bob@corp.example", user.Username)
	assert.Equal(t, "Bob Builder", user.DisplayName)
	assert.Equal(t, "entra", user.AuthProvider)
	// The object ID wins over the subject as the stable key.
	assert.Equal(t, "oid-456", user.AuthSub)
	assert.Equal(t, []domain.Role{domain.RoleUser}, user.Roles)

	// A second resolution returns the same account, not a new one.
	again, err := svc.ResolveCurrentUser(ctx, principal)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

// Concurrent first sight of the same federated identity must provision
// exactly one account; the losers of the insert race resolve to it.
func TestResolveCurrentUser_FederatedConcurrentFirstUse(t *testing.T) {
	svc, env := newTestIdentityService(t)
	ctx := context.Background()

	principal := &auth.Principal{
		Federated: &auth.FederatedClaims{
			Subject:           "sub-racy",
			PreferredUsername: "racer",
			Email:             "racer@corp.example",
		},
	}

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := svc.ResolveCurrentUser(ctx, principal)
			errs[i] = err
			if err == nil {
				ids[i] = user.ID
			}
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	users, err := env.store.ListUsers(ctx)
	require.NoError(t, err)
	provisioned := 0
	for _, u := range users {
		if u.AuthSub == "sub-racy" {
			provisioned++
		}
	}
	assert.Equal(t, 1, provisioned)
}

func TestResolveCurrentUser_FederatedNoSubject(t *testing.T) {
	svc, _ := newTestIdentityService(t)

	principal := &auth.Principal{Federated: &auth.FederatedClaims{}}
	_, err := svc.ResolveCurrentUser(context.Background(), principal)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestResolveCurrentUser_FederatedUsernameCollision(t *testing.T) {
	svc, env := newTestIdentityService(t)
	ctx := context.Background()

	env.seedUser(t, "user-taken", "carol")

	principal := &auth.Principal{
		Federated: &auth.FederatedClaims{
			Subject:           "sub-carol",
			PreferredUsername: "carol",
		},
	}

	user, err := svc.ResolveCurrentUser(ctx, principal)
	require.NoError(t, err)
	assert.NotEqual(t, "user-taken", user.ID)
	assert.NotEqual(t, "carol", user.Username)
	assert.True(t, len(user.Username) > len("carol"), "collided username gets a suffix")
}

func TestResolveCurrentUser_FederatedDerivedUsername(t *testing.T) {
	svc, _ := newTestIdentityService(t)

	principal := &auth.Principal{
		Federated: &auth.FederatedClaims{Subject: "sub-anon"},
	}
	user, err := svc.ResolveCurrentUser(context.Background(), principal)
	require.NoError(t, err)
	assert.Equal(t, "entra-sub-anon", user.Username)
}

func TestResolveCurrentUser_FederatedAdminRole(t *testing.T) {
	svc, _ := newTestIdentityService(t)

	principal := &auth.Principal{
		Federated: &auth.FederatedClaims{
			Subject: "sub-admin",
			Roles:   []string{"reader", "admin"},
		},
	}
	user, err := svc.ResolveCurrentUser(context.Background(), principal)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	assert.Contains(t, user.Roles, domain.RoleUser)
}

func TestResolveCurrentUser_FederatedNoStarterShelves(t *testing.T) {
	svc, env := newTestIdentityService(t)
	ctx := context.Background()

	principal := &auth.Principal{
		Federated: &auth.FederatedClaims{Subject: "sub-shelfless"},
	}
	user, err := svc.ResolveCurrentUser(ctx, principal)
	require.NoError(t, err)

	shelves, err := env.store.ListShelvesByOwner(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, shelves)
}
