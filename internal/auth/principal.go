// Package auth provides authentication primitives: password hashing, access
// tokens for local accounts, federated token verification, and the request
// principal both paths resolve into.
package auth

import "strings"

// Authority is a granted permission derived from roles or token scopes.
type Authority string

const (
	// AuthorityUser is held by every authenticated principal.
	AuthorityUser Authority = "ROLE_USER"
	// AuthorityAdmin is held by catalog administrators.
	AuthorityAdmin Authority = "ROLE_ADMIN"
)

// Principal is the authenticated caller of a request. Exactly one of Local
// and Federated is set, depending on which token verified.
type Principal struct {
	Local     *LocalPrincipal
	Federated *FederatedClaims
}

// LocalPrincipal identifies a caller authenticated with a locally issued
// access token. The username is the account's natural key.
type LocalPrincipal struct {
	UserID      string
	Username    string
	Authorities []Authority
}

// FederatedClaims carries the validated claims of an external provider token.
// ObjectID is the provider's directory object identifier and takes precedence
// over Subject when resolving the account.
type FederatedClaims struct {
	Subject           string
	ObjectID          string
	PreferredUsername string
	Name              string
	Email             string
	Roles             []string
	Scope             string
}

// IsFederated reports whether the principal came from an external provider.
func (p *Principal) IsFederated() bool {
	return p.Federated != nil
}

// ProviderSubject returns the stable identifier used to locate the federated
// account: the object ID when present, the token subject otherwise.
func (c *FederatedClaims) ProviderSubject() string {
	if c.ObjectID != "" {
		return c.ObjectID
	}
	return c.Subject
}

// Authorities maps the claims' roles and scopes to granted authorities.
// Every federated caller gets AuthorityUser; role names grant on top.
func (c *FederatedClaims) Authorities() []Authority {
	authorities := []Authority{AuthorityUser}
	seen := map[Authority]bool{AuthorityUser: true}

	add := func(a Authority) {
		if !seen[a] {
			seen[a] = true
			authorities = append(authorities, a)
		}
	}

	for _, role := range c.Roles {
		if strings.EqualFold(role, "admin") {
			add(AuthorityAdmin)
		}
	}
	for _, scope := range strings.Fields(c.Scope) {
		if strings.EqualFold(scope, "admin") {
			add(AuthorityAdmin)
		}
	}
	return authorities
}

// HasAuthority reports whether the principal holds the given authority.
func (p *Principal) HasAuthority(authority Authority) bool {
	var granted []Authority
	switch {
	case p.Local != nil:
		granted = p.Local.Authorities
	case p.Federated != nil:
		granted = p.Federated.Authorities()
	}
	for _, a := range granted {
		if a == authority {
			return true
		}
	}
	return false
}
