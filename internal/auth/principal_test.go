package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFederatedClaims_ProviderSubject(t *testing.T) {
	// Object ID takes precedence over the token subject.
	withOID := &FederatedClaims{Subject: "sub-1", ObjectID: "oid-1"}
	assert.Equal(t, "oid-1", withOID.ProviderSubject())

	subjectOnly := &FederatedClaims{Subject: "sub-1"}
	assert.Equal(t, "sub-1", subjectOnly.ProviderSubject())
}

func TestFederatedClaims_Authorities(t *testing.T) {
	tests := []struct {
		name   string
		claims FederatedClaims
		want   []Authority
	}{
		{
			name:   "plain user",
			claims: FederatedClaims{Subject: "sub-1"},
			want:   []Authority{AuthorityUser},
		},
		{
			name:   "admin role",
			claims: FederatedClaims{Subject: "sub-1", Roles: []string{"Admin"}},
			want:   []Authority{AuthorityUser, AuthorityAdmin},
		},
		{
			name:   "admin scope",
			claims: FederatedClaims{Subject: "sub-1", Scope: "read admin write"},
			want:   []Authority{AuthorityUser, AuthorityAdmin},
		},
		{
			name:   "admin in both is not duplicated",
			claims: FederatedClaims{Subject: "sub-1", Roles: []string{"admin"}, Scope: "admin"},
			want:   []Authority{AuthorityUser, AuthorityAdmin},
		},
		{
			name:   "unknown roles grant nothing extra",
			claims: FederatedClaims{Subject: "sub-1", Roles: []string{"editor", "viewer"}},
			want:   []Authority{AuthorityUser},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.Authorities())
		})
	}
}

func TestPrincipal_HasAuthority_Federated(t *testing.T) {
	p := &Principal{Federated: &FederatedClaims{Subject: "sub-1", Roles: []string{"admin"}}}

	assert.True(t, p.IsFederated())
	assert.True(t, p.HasAuthority(AuthorityUser))
	assert.True(t, p.HasAuthority(AuthorityAdmin))
}

func TestPrincipal_HasAuthority_Empty(t *testing.T) {
	p := &Principal{}
	assert.False(t, p.HasAuthority(AuthorityUser))
}
