// Package authz holds the authorization decisions: the admin-or-self
// ownership policy and the static route access table. Every decision fails
// closed; unknown logins and unknown roles grant nothing.
package authz

import (
	"context"

	"github.com/stockwatch/stockwatch/auth"
	"github.com/stockwatch/stockwatch/model"
)

// Policy answers ownership and role questions against the credential
// store.
type Policy struct {
	store auth.CredentialStore
}

// NewPolicy creates a Policy.
func NewPolicy(store auth.CredentialStore) *Policy {
	return &Policy{store: store}
}

// IsAdmin reports whether the login resolves to an ADMIN credential.
func (p *Policy) IsAdmin(ctx context.Context, login string) bool {
	info, err := p.store.FindByLogin(ctx, login)
	if err != nil {
		return false
	}
	return info.Role == model.RoleAdmin
}

// IsSelf reports whether the login resolves to the credential owning
// targetID.
func (p *Policy) IsSelf(ctx context.Context, login string, targetID uint) bool {
	info, err := p.store.FindByLogin(ctx, login)
	if err != nil {
		return false
	}
	return info.UserID == targetID
}

// CanAccess is the composition rule applied uniformly to every owned
// resource: admin or self, nothing else. Callers translate false into a
// forbidden response before any existence check runs, so a denied caller
// learns nothing about the resource.
func (p *Policy) CanAccess(ctx context.Context, login string, targetID uint) bool {
	info, err := p.store.FindByLogin(ctx, login)
	if err != nil {
		return false
	}
	switch info.Role {
	case model.RoleAdmin:
		return true
	case model.RoleUser:
		return info.UserID == targetID
	}
	return false
}
