package auth

import (
	"context"
	"fmt"
	"strings"
)

// Role is the caller's authority level. The zero value is not a valid role.
type Role int

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleUser:
		return "USER"
	}
	return "UNKNOWN"
}

// ParseRole accepts any casing of ADMIN or USER.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN":
		return RoleAdmin, nil
	case "USER":
		return RoleUser, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// Principal is the authenticated caller.
type Principal struct {
	ID   string
	Role Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Owns reports whether the principal is the given owner.
func (p Principal) Owns(ownerID string) bool {
	return p.ID != "" && p.ID == ownerID
}

// CanAccess is the single ownership predicate: admins see everything,
// users only their own records.
func (p Principal) CanAccess(ownerID string) bool {
	return p.IsAdmin() || p.Owns(ownerID)
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
