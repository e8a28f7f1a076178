package auth

import (
	"context"

	"github.com/google/uuid"
)

// Decision is the outcome of a role check
type Decision int

const (
	Forbidden Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "forbidden"
}

// RoleChecker looks up role membership
type RoleChecker interface {
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
}

// RequireRole decides whether the identity holds role.
// A lookup error yields Forbidden together with the error.
func RequireRole(ctx context.Context, checker RoleChecker, identity *Identity, role string) (Decision, error) {
	if identity == nil {
		return Forbidden, nil
	}

	ok, err := checker.HasRole(ctx, identity.UserID, role)
	if err != nil {
		return Forbidden, err
	}
	if !ok {
		return Forbidden, nil
	}
	return Authorized, nil
}
