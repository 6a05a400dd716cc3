package jobs

import (
	"context"
	"log/slog"

	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/internal/tasks"
	"github.com/taskdeck/taskdeck/internal/users"
)

// AssignmentNotifier enqueues assignment notifications from the task
// service. Enqueue failures are logged and dropped; notification delivery is
// advisory and never blocks the task mutation.
type AssignmentNotifier struct {
	client *Client
	logger *slog.Logger
}

// NewAssignmentNotifier constructs an AssignmentNotifier.
func NewAssignmentNotifier(client *Client, logger *slog.Logger) *AssignmentNotifier {
	return &AssignmentNotifier{client: client, logger: logger}
}

// TaskAssigned enqueues one notification for the assignee.
func (n *AssignmentNotifier) TaskAssigned(ctx context.Context, actor shared.AuthenticatedUser, task tasks.Task, assignee users.User) {
	if n == nil || n.client == nil {
		return
	}
	_, err := n.client.EnqueueTaskAssigned(ctx, TaskAssignedPayload{
		TaskID:        task.ID,
		Title:         task.Title,
		AssigneeEmail: assignee.Email,
		AssigneeName:  assignee.Name,
		AssignedBy:    actor.Name,
	})
	if err != nil {
		n.logger.Warn("enqueue assignment notification",
			slog.Int64("task_id", task.ID),
			slog.Any("error", err))
	}
}
