// Package jobs defines the background task types and the Asynq worker that
// processes them.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeTaskAssigned is the task type for assignment notifications.
	TaskTypeTaskAssigned = "task:assigned"
)

// TaskAssignedPayload describes a task assignment to notify about.
type TaskAssignedPayload struct {
	TaskID        int64  `json:"task_id"`
	Title         string `json:"title"`
	AssigneeEmail string `json:"assignee_email"`
	AssigneeName  string `json:"assignee_name"`
	AssignedBy    string `json:"assigned_by"`
}

// NewTaskAssignedTask constructs an Asynq task.
func NewTaskAssignedTask(payload TaskAssignedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTaskAssigned, data), nil
}

// Sender delivers a notification message. Implemented by the SMTP mailer.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewTaskAssignedHandler returns the handler processing TaskTypeTaskAssigned
// tasks. Malformed payloads are dropped; delivery failures are retried by
// Asynq.
func NewTaskAssignedHandler(sender Sender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload TaskAssignedPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		subject := fmt.Sprintf("Task assigned to you: %s", payload.Title)
		body := fmt.Sprintf("Hi %s,\r\n\r\n%s assigned task #%d (%q) to you.\r\n",
			payload.AssigneeName, payload.AssignedBy, payload.TaskID, payload.Title)
		if err := sender.Send(ctx, payload.AssigneeEmail, subject, body); err != nil {
			logger.Warn("send assignment notification",
				slog.Int64("task_id", payload.TaskID),
				slog.Any("error", err))
			return err
		}
		return nil
	}
}
