package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/rbac"
	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/internal/users"
)

// RepositoryPort defines data access methods for tasks.
type RepositoryPort interface {
	CreateTask(ctx context.Context, task Task) (*Task, error)
	FindTask(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context, scope rbac.TaskScope) ([]Task, error)
	UpdateTask(ctx context.Context, id int64, patch UpdateTaskInput) (*Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// UserDirectory resolves user ids for assignee validation.
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*users.User, error)
}

// AssignmentNotifier is told when a task gains an assignee other than the
// acting user. Best-effort; failures never surface to the caller.
type AssignmentNotifier interface {
	TaskAssigned(ctx context.Context, actor shared.AuthenticatedUser, task Task, assignee users.User)
}

// Service enforces the task access rules. Every operation runs the same
// sequence: authorize, mutate through the store, then append the audit
// entry. The audit write happens only after the mutation applied.
type Service struct {
	repo     RepositoryPort
	users    UserDirectory
	policy   *rbac.Policy
	recorder *audit.Recorder
	notifier AssignmentNotifier
}

// NewService builds Service instance. notifier may be nil.
func NewService(repo RepositoryPort, directory UserDirectory, policy *rbac.Policy, recorder *audit.Recorder, notifier AssignmentNotifier) *Service {
	return &Service{repo: repo, users: directory, policy: policy, recorder: recorder, notifier: notifier}
}

// Create stores a new task owned by the actor. With no requested assignee
// the task is assigned to the actor.
func (s *Service) Create(ctx context.Context, actor shared.AuthenticatedUser, input CreateTaskInput) (*Task, error) {
	target := rbac.Target{}
	var assignee *users.User
	if input.AssignedToID != nil {
		resolved, err := s.resolveAssignee(ctx, *input.AssignedToID)
		if err != nil {
			return nil, err
		}
		assignee = resolved
		target.Assignee = &rbac.AssigneeResource{ID: resolved.ID, OrganizationID: resolved.OrganizationID}
	}
	if decision := s.policy.Authorize(actor, shared.ActionCreateTask, target); !decision.Allowed {
		return nil, decision.Err()
	}

	task := Task{
		Title:          input.Title,
		Description:    input.Description,
		OwnerID:        actor.ID,
		AssignedToID:   actor.ID,
		OrganizationID: actor.OrganizationID,
		Status:         StatusTodo,
	}
	if input.AssignedToID != nil {
		task.AssignedToID = *input.AssignedToID
	}
	if input.Status != nil {
		task.Status = *input.Status
	}

	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}

	s.recorder.Log(ctx, actor, shared.ActionCreateTask, created.ID,
		fmt.Sprintf("title=%q assignedTo=%d", created.Title, created.AssignedToID))
	s.notifyAssignment(ctx, actor, *created, assignee)
	return created, nil
}

// List returns the tasks visible to the actor, newest first, with owner and
// assignee identity resolved. The view itself is audited.
func (s *Service) List(ctx context.Context, actor shared.AuthenticatedUser) ([]Task, error) {
	if decision := s.policy.Authorize(actor, shared.ActionViewTasks, rbac.Target{}); !decision.Allowed {
		return nil, decision.Err()
	}
	s.recorder.Log(ctx, actor, shared.ActionViewTasks, 0, "")
	return s.repo.ListTasks(ctx, rbac.ScopeFor(actor))
}

// Update applies a partial patch to a task the actor may modify.
func (s *Service) Update(ctx context.Context, actor shared.AuthenticatedUser, id int64, input UpdateTaskInput) (*Task, error) {
	task, err := s.findForModify(ctx, id)
	if err != nil {
		return nil, err
	}

	target := rbac.Target{Task: taskResource(task)}
	var assignee *users.User
	if input.AssignedToID != nil && *input.AssignedToID != task.AssignedToID {
		resolved, err := s.resolveAssignee(ctx, *input.AssignedToID)
		if err != nil {
			return nil, err
		}
		assignee = resolved
		target.Assignee = &rbac.AssigneeResource{ID: resolved.ID, OrganizationID: resolved.OrganizationID}
	}
	if decision := s.policy.Authorize(actor, shared.ActionUpdateTask, target); !decision.Allowed {
		return nil, decision.Err()
	}

	updated, err := s.repo.UpdateTask(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.recorder.Log(ctx, actor, shared.ActionUpdateTask, id, "")
	s.notifyAssignment(ctx, actor, *updated, assignee)
	return updated, nil
}

// Delete removes a task the actor may modify.
func (s *Service) Delete(ctx context.Context, actor shared.AuthenticatedUser, id int64) error {
	task, err := s.findForModify(ctx, id)
	if err != nil {
		return err
	}
	if decision := s.policy.Authorize(actor, shared.ActionDeleteTask, rbac.Target{Task: taskResource(task)}); !decision.Allowed {
		return decision.Err()
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.recorder.Log(ctx, actor, shared.ActionDeleteTask, id, fmt.Sprintf("title=%q", task.Title))
	return nil
}

// findForModify fetches the target without leaking whether a missing row and
// a cross-org row differ; the policy makes that call.
func (s *Service) findForModify(ctx context.Context, id int64) (*Task, error) {
	task, err := s.repo.FindTask(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The policy turns a nil target into the uniform not-found deny.
			return nil, rbac.DenyNotFound().Err()
		}
		return nil, err
	}
	return task, nil
}

func (s *Service) resolveAssignee(ctx context.Context, id int64) (*users.User, error) {
	assignee, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// An unknown assignee is indistinguishable from a cross-org one.
			return nil, rbac.Deny(rbac.ReasonCrossOrgAssignee).Err()
		}
		return nil, err
	}
	return assignee, nil
}

func (s *Service) notifyAssignment(ctx context.Context, actor shared.AuthenticatedUser, task Task, assignee *users.User) {
	if s.notifier == nil || assignee == nil || assignee.ID == actor.ID {
		return
	}
	s.notifier.TaskAssigned(ctx, actor, task, *assignee)
}

func taskResource(task *Task) *rbac.TaskResource {
	return &rbac.TaskResource{ID: task.ID, OwnerID: task.OwnerID, OrganizationID: task.OrganizationID}
}
