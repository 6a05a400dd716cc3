package audit

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// Entry is one append-only audit record. UserEmail and UserRole are
// snapshots taken when the action happened; later changes to the user
// account never alter an entry.
type Entry struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"userId"`
	UserEmail  string        `json:"userEmail"`
	UserRole   shared.Role   `json:"userRole"`
	Action     shared.Action `json:"action"`
	ResourceID *int64        `json:"resourceId,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}
