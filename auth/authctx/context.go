// Package authctx carries the resolved principal through a request's
// context. The value is request-scoped and explicit: it is set once by the
// authentication filter and read by guards and handlers, never stored in
// any process-wide state.
package authctx

import (
	"context"

	"github.com/stockwatch/stockwatch/model"
)

// Principal is the identity resolved for one request. Absence from the
// context means the request is anonymous.
type Principal struct {
	UserID uint
	Login  string
	Role   model.Role
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

type contextKey struct{}

var principalKey = contextKey{}

// Set attaches the principal to the context.
func Set(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Get retrieves the principal. The second return is false for anonymous
// requests.
func Get(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// MustGet retrieves the principal and panics when missing. Only for
// handlers behind a guard that rejects anonymous access.
func MustGet(ctx context.Context) Principal {
	p, ok := Get(ctx)
	if !ok {
		panic("authctx: no principal in context")
	}
	return p
}
