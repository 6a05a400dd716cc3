package rbac

import "github.com/taskdeck/taskdeck/internal/shared"

// TaskScope is a declarative filter describing which task rows an actor may
// see when listing. The repository translates it into SQL; Matches applies
// the same predicate in memory.
type TaskScope struct {
	// OrganizationID is always the actor's organization.
	OrganizationID int64
	// RestrictedTo, when non-zero, limits visibility to tasks owned by or
	// assigned to that user id.
	RestrictedTo int64
}

// ScopeFor returns the visibility scope for the actor. Owners and admins see
// every task in their organization; an admin may see tasks it cannot modify.
// Viewers see only tasks they own or are assigned to.
func ScopeFor(actor shared.AuthenticatedUser) TaskScope {
	scope := TaskScope{OrganizationID: actor.OrganizationID}
	if !Satisfies(actor.Role, shared.RoleOwner, shared.RoleAdmin) {
		scope.RestrictedTo = actor.ID
	}
	return scope
}

// Matches reports whether a task with the given fields falls inside the
// scope. The viewer restriction is an OR across two organization-scoped
// predicates: assigned-to-me or owned-by-me.
func (s TaskScope) Matches(organizationID, ownerID, assignedToID int64) bool {
	if organizationID != s.OrganizationID {
		return false
	}
	if s.RestrictedTo == 0 {
		return true
	}
	return assignedToID == s.RestrictedTo || ownerID == s.RestrictedTo
}
