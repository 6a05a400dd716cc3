// Package rbac implements role-based authorization for task records: the
// role hierarchy, the per-action access policy, and the listing scope.
package rbac

import "github.com/taskdeck/taskdeck/internal/shared"

// hierarchy maps each role to the set of roles it satisfies. Kept as an
// explicit table so a future non-linear role can be added without touching
// call sites.
var hierarchy = map[shared.Role][]shared.Role{
	shared.RoleOwner:  {shared.RoleOwner, shared.RoleAdmin, shared.RoleViewer},
	shared.RoleAdmin:  {shared.RoleAdmin, shared.RoleViewer},
	shared.RoleViewer: {shared.RoleViewer},
}

// EffectiveRoles returns the roles the given role inherits, itself included.
// Unknown roles have no effective roles.
func EffectiveRoles(role shared.Role) []shared.Role {
	effective, ok := hierarchy[role]
	if !ok {
		return nil
	}
	out := make([]shared.Role, len(effective))
	copy(out, effective)
	return out
}

// Satisfies reports whether the actor's role meets the requirement. An empty
// requirement means no restriction. This is the only place role power is
// compared; callers must not special-case roles themselves.
func Satisfies(actorRole shared.Role, required ...shared.Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, effective := range hierarchy[actorRole] {
		for _, want := range required {
			if effective == want {
				return true
			}
		}
	}
	return false
}
