package rbac

import (
	"fmt"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// Deny reasons surfaced to callers. Cross-org targets deliberately share the
// not-found reason so a denied actor cannot probe for task existence in
// another organization.
const (
	ReasonTaskNotFound      = "task not found"
	ReasonCrossOrgAssignee  = "assigned user does not belong to your organization"
	ReasonAdminNotTaskOwner = "admins may only modify their own tasks"
	ReasonInsufficientRole  = "insufficient permissions"
)

// TaskResource carries the target task fields the policy inspects.
type TaskResource struct {
	ID             int64
	OwnerID        int64
	OrganizationID int64
}

// AssigneeResource carries the resolved assignee the policy inspects. A nil
// assignee on the Target means the request does not (re)assign anyone.
type AssigneeResource struct {
	ID             int64
	OrganizationID int64
}

// Target bundles the optional resources an action applies to. Resolution of
// ids into resources is the caller's job; the policy never touches storage.
type Target struct {
	Task     *TaskResource
	Assignee *AssigneeResource
}

// Decision is the outcome of an authorization check. Deny is a normal return
// value, not an error; Err converts it for callers that propagate.
type Decision struct {
	Allowed  bool
	Reason   string
	notFound bool
}

// Allow grants the action.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny rejects the action with a reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// DenyNotFound rejects the action presenting the target as missing,
// regardless of whether it exists in another organization.
func DenyNotFound() Decision {
	return Decision{Reason: ReasonTaskNotFound, notFound: true}
}

// Err maps a deny to the matching sentinel error. Allowed decisions map to
// nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.notFound {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, d.Reason)
	}
	return fmt.Errorf("%w: %s", shared.ErrForbidden, d.Reason)
}

// Policy decides whether an actor may perform an action on a target. It is
// stateless and safe for concurrent use; it performs no mutation and no
// logging.
type Policy struct{}

// NewPolicy constructs a Policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// Authorize evaluates the access rules for the given actor, action and
// target. Rules are checked in a fixed order; the first terminal rule
// decides.
func (p *Policy) Authorize(actor shared.AuthenticatedUser, action shared.Action, target Target) Decision {
	switch action {
	case shared.ActionCreateTask:
		return p.authorizeCreate(actor, target)
	case shared.ActionViewTasks:
		// Visibility is narrowed by ScopeFor, not denied here.
		return Allow()
	case shared.ActionUpdateTask, shared.ActionDeleteTask:
		return p.authorizeModify(actor, target)
	case shared.ActionViewAuditLog:
		if !Satisfies(actor.Role, shared.RoleOwner, shared.RoleAdmin) {
			return Deny(ReasonInsufficientRole)
		}
		return Allow()
	}
	return Deny(fmt.Sprintf("unknown action %q", action))
}

func (p *Policy) authorizeCreate(actor shared.AuthenticatedUser, target Target) Decision {
	if !Satisfies(actor.Role, shared.RoleOwner, shared.RoleAdmin) {
		return Deny(ReasonInsufficientRole)
	}
	if target.Assignee != nil && target.Assignee.OrganizationID != actor.OrganizationID {
		return Deny(ReasonCrossOrgAssignee)
	}
	return Allow()
}

func (p *Policy) authorizeModify(actor shared.AuthenticatedUser, target Target) Decision {
	if target.Task == nil {
		return DenyNotFound()
	}
	if target.Task.OrganizationID != actor.OrganizationID {
		// Exists, but in another tenant. Presented exactly like a missing
		// task so existence is never confirmed across organizations.
		return DenyNotFound()
	}
	switch {
	case Satisfies(actor.Role, shared.RoleOwner):
	case Satisfies(actor.Role, shared.RoleAdmin):
		if target.Task.OwnerID != actor.ID {
			return Deny(ReasonAdminNotTaskOwner)
		}
	default:
		return Deny(ReasonInsufficientRole)
	}
	if target.Assignee != nil && target.Assignee.OrganizationID != actor.OrganizationID {
		return Deny(ReasonCrossOrgAssignee)
	}
	return Allow()
}
