// Package authz holds the predicates that gate every role-restricted endpoint.
package authz

import (
	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/pkg/apperror"
)

// Guard inspects the resolved caller (nil for anonymous requests) and returns
// a client-facing error when access must be refused.
type Guard func(user *entity.User) error

// Authenticated requires a resolved user.
func Authenticated() Guard {
	return func(user *entity.User) error {
		if user == nil {
			return apperror.Unauthenticated("Authentication required")
		}
		return nil
	}
}

// HasRole requires an authenticated user whose role is one of roles.
func HasRole(roles ...entity.Role) Guard {
	return func(user *entity.User) error {
		if err := Authenticated()(user); err != nil {
			return err
		}
		for _, role := range roles {
			if matches(user.Role, role) {
				return nil
			}
		}
		return apperror.Forbidden(forbiddenMessage(roles))
	}
}

// All composes guards by conjunction, stopping at the first failure.
func All(guards ...Guard) Guard {
	return func(user *entity.User) error {
		for _, g := range guards {
			if err := g(user); err != nil {
				return err
			}
		}
		return nil
	}
}

func matches(actual, required entity.Role) bool {
	switch actual {
	case entity.RoleAdmin, entity.RoleDonor, entity.RoleStudent:
		return actual == required
	default:
		return false
	}
}

func forbiddenMessage(roles []entity.Role) string {
	if len(roles) != 1 {
		return "Access denied for your role"
	}
	switch roles[0] {
	case entity.RoleAdmin:
		return "Admin access required"
	case entity.RoleDonor:
		return "Donor access required"
	case entity.RoleStudent:
		return "Student access required"
	default:
		return "Access denied for your role"
	}
}
