package tasks

import (
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// UserSummary is the resolved identity of a task's owner or assignee,
// returned with listings so clients never see bare ids.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Task represents one task record. OwnerID and OrganizationID are fixed at
// creation: the owner is the creator and the organization is the creator's,
// never taken from request input. AssignedToID always references a user in
// the task's organization.
type Task struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	OwnerID        int64        `json:"ownerId"`
	AssignedToID   int64        `json:"assignedToId"`
	OrganizationID int64        `json:"organizationId"`
	Status         Status       `json:"status"`
	Owner          *UserSummary `json:"owner,omitempty"`
	AssignedTo     *UserSummary `json:"assignedTo,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// CreateTaskInput carries the caller-supplied fields for task creation.
type CreateTaskInput struct {
	Title        string
	Description  string
	AssignedToID *int64
	Status       *Status
}

// UpdateTaskInput is a partial patch; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	AssignedToID *int64
	Status       *Status
}
