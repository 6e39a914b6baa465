// Package access decides whether an authenticated caller may use a route.
package access

import (
	"slices"

	"revista/backend/internal/domain/auth"
)

// Authorize admits claims whose role is in allowed. Missing claims fail with
// UNAUTHORIZED before any role is looked at; a role outside the set fails
// with INSUFFICIENT_PERMISSIONS. An empty allowed set admits any
// authenticated caller.
func Authorize(claims *auth.Claims, allowed ...auth.Role) error {
	if claims == nil {
		return auth.ErrUnauthenticated
	}
	if len(allowed) == 0 {
		return nil
	}
	if !slices.Contains(allowed, claims.Role) {
		return auth.ErrForbidden
	}
	return nil
}

// CanModify reports whether actor may change a resource owned by ownerID:
// the owner always may, and so may any role in elevated.
func CanModify(actor *auth.Claims, ownerID int64, elevated ...auth.Role) bool {
	if actor == nil {
		return false
	}
	return actor.UserID == ownerID || slices.Contains(elevated, actor.Role)
}

// Route-level role sets.
var (
	Editors = []auth.Role{auth.RoleAdmin, auth.RoleEditor}
	Admins  = []auth.Role{auth.RoleAdmin}
	Anyone  = []auth.Role{}
)
