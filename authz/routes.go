package authz

import (
	"github.com/stockwatch/stockwatch/auth/authctx"
	"github.com/stockwatch/stockwatch/model"
)

// Access is the coarse access class of a route.
type Access int

const (
	// Public routes accept anonymous requests.
	Public Access = iota
	// Authenticated routes require any resolved principal.
	Authenticated
	// AdminOnly routes require the ADMIN role.
	AdminOnly
)

type routeKey struct {
	method string
	path   string
}

// routeTable is the static access table, evaluated before dispatch. Paths
// use the router's template form. Routes not listed here default to
// AdminOnly.
var routeTable = map[routeKey]Access{
	{"POST", "/authentication"}: Public,
	{"POST", "/register"}:       Public,
	{"GET", "/health"}:          Public,
	{"GET", "/stocks"}:          Public,
	{"GET", "/stocks/:symbol"}:  Public,

	{"GET", "/users/me"}:     Authenticated,
	{"GET", "/users/:id"}:    Authenticated,
	{"PUT", "/users"}:        Authenticated,
	{"DELETE", "/users/:id"}: Authenticated,

	{"GET", "/security-info/:id"}:    Authenticated,
	{"PUT", "/security-info/:id"}:    Authenticated,
	{"DELETE", "/security-info/:id"}: Authenticated,

	{"GET", "/fav-stocks"}:    Authenticated,
	{"POST", "/fav-stocks"}:   Authenticated,
	{"DELETE", "/fav-stocks"}: Authenticated,

	{"GET", "/users"}:               AdminOnly,
	{"POST", "/users"}:              AdminOnly,
	{"GET", "/security-info"}:       AdminOnly,
	{"POST", "/security-info"}:      AdminOnly,
	{"POST", "/stocks/update"}:      AdminOnly,
	{"POST", "/stocks/send-emails"}: AdminOnly,
}

// RequiredAccess returns the access class for a verb and route template.
// Unlisted routes fail closed to AdminOnly.
func RequiredAccess(method, path string) Access {
	if access, ok := routeTable[routeKey{method, path}]; ok {
		return access
	}
	return AdminOnly
}

// Allowed decides whether a principal (or its absence) satisfies an access
// class. The role switch is exhaustive: a credential with an unknown role
// behaves like an anonymous caller.
func Allowed(access Access, principal authctx.Principal, authenticated bool) bool {
	switch access {
	case Public:
		return true
	case Authenticated:
		if !authenticated {
			return false
		}
		switch principal.Role {
		case model.RoleAdmin, model.RoleUser:
			return true
		}
		return false
	case AdminOnly:
		return authenticated && principal.Role == model.RoleAdmin
	}
	return false
}
