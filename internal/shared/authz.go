package shared

// Role is the privilege level attached to a user account. Roles form a
// strict total order: owner > admin > viewer.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// Action identifies an auditable operation on the platform.
type Action string

const (
	ActionCreateTask   Action = "create_task"
	ActionUpdateTask   Action = "update_task"
	ActionDeleteTask   Action = "delete_task"
	ActionViewTasks    Action = "view_tasks"
	ActionViewAuditLog Action = "view_audit_log"
)

// AuthenticatedUser is the identity attached to every request after token
// verification. Its fields are trusted as-is; downstream code never
// re-derives them.
type AuthenticatedUser struct {
	ID             int64
	Name           string
	Email          string
	Role           Role
	OrganizationID int64
	TeamID         *int64
}
