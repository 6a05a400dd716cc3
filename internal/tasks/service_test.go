package tasks

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/rbac"
	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/internal/users"
)

type mockRepository struct {
	tasks   map[int64]Task
	nextID  int64
	updates int
	deletes int
}

func newMockRepository(seed ...Task) *mockRepository {
	repo := &mockRepository{tasks: map[int64]Task{}, nextID: 1}
	for _, task := range seed {
		repo.tasks[task.ID] = task
		if task.ID >= repo.nextID {
			repo.nextID = task.ID + 1
		}
	}
	return repo
}

func (m *mockRepository) CreateTask(ctx context.Context, task Task) (*Task, error) {
	task.ID = m.nextID
	m.nextID++
	m.tasks[task.ID] = task
	return &task, nil
}

func (m *mockRepository) FindTask(ctx context.Context, id int64) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &task, nil
}

func (m *mockRepository) ListTasks(ctx context.Context, scope rbac.TaskScope) ([]Task, error) {
	var out []Task
	for _, task := range m.tasks {
		if scope.Matches(task.OrganizationID, task.OwnerID, task.AssignedToID) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *mockRepository) UpdateTask(ctx context.Context, id int64, patch UpdateTaskInput) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.AssignedToID != nil {
		task.AssignedToID = *patch.AssignedToID
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	m.tasks[id] = task
	m.updates++
	return &task, nil
}

func (m *mockRepository) DeleteTask(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.tasks, id)
	m.deletes++
	return nil
}

type mockDirectory struct {
	users map[int64]users.User
}

func (m *mockDirectory) FindByID(ctx context.Context, id int64) (*users.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &user, nil
}

type memoryAuditRepo struct {
	entries []audit.Entry
}

func (m *memoryAuditRepo) AppendEntry(ctx context.Context, entry audit.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAuditRepo) ListEntries(ctx context.Context) ([]audit.Entry, error) {
	return m.entries, nil
}

type notification struct {
	taskID     int64
	assigneeID int64
}

type mockNotifier struct {
	sent []notification
}

func (m *mockNotifier) TaskAssigned(ctx context.Context, actor shared.AuthenticatedUser, task Task, assignee users.User) {
	m.sent = append(m.sent, notification{taskID: task.ID, assigneeID: assignee.ID})
}

type fixture struct {
	repo     *mockRepository
	audit    *memoryAuditRepo
	notifier *mockNotifier
	service  *Service
}

func newFixture(t *testing.T, seed ...Task) *fixture {
	t.Helper()
	repo := newMockRepository(seed...)
	auditRepo := &memoryAuditRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := &mockDirectory{users: map[int64]users.User{
		1: {ID: 1, Name: "Olivia Owner", Email: "owner@acme.test", Role: shared.RoleOwner, OrganizationID: 1},
		2: {ID: 2, Name: "Adam Admin", Email: "admin@acme.test", Role: shared.RoleAdmin, OrganizationID: 1},
		3: {ID: 3, Name: "Vera Viewer", Email: "viewer@acme.test", Role: shared.RoleViewer, OrganizationID: 1},
		4: {ID: 4, Name: "Second Admin", Email: "admin2@acme.test", Role: shared.RoleAdmin, OrganizationID: 1},
		9: {ID: 9, Name: "Outsider", Email: "out@other.test", Role: shared.RoleAdmin, OrganizationID: 2},
	}}
	notifier := &mockNotifier{}
	service := NewService(repo, directory, rbac.NewPolicy(), audit.NewRecorder(auditRepo, logger), notifier)
	return &fixture{repo: repo, audit: auditRepo, notifier: notifier, service: service}
}

func member(id int64, role shared.Role) shared.AuthenticatedUser {
	emails := map[int64]string{1: "owner@acme.test", 2: "admin@acme.test", 3: "viewer@acme.test", 4: "admin2@acme.test"}
	return shared.AuthenticatedUser{ID: id, Email: emails[id], Role: role, OrganizationID: 1}
}

func TestCreateDefaultsAssigneeToActor(t *testing.T) {
	f := newFixture(t)
	actor := member(1, shared.RoleOwner)

	created, err := f.service.Create(context.Background(), actor, CreateTaskInput{Title: "Write launch plan"})
	require.NoError(t, err)

	assert.Equal(t, actor.ID, created.OwnerID)
	assert.Equal(t, actor.ID, created.AssignedToID)
	assert.Equal(t, actor.OrganizationID, created.OrganizationID)
	assert.Equal(t, StatusTodo, created.Status)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, shared.ActionCreateTask, entry.Action)
	assert.Equal(t, actor.Email, entry.UserEmail)
	assert.Equal(t, shared.RoleOwner, entry.UserRole)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, created.ID, *entry.ResourceID)
	assert.Equal(t, `title="Write launch plan" assignedTo=1`, entry.Detail)

	// Self-assignment sends no notification.
	assert.Empty(t, f.notifier.sent)
}

func TestCreateWithAssigneeNotifies(t *testing.T) {
	f := newFixture(t)
	assignee := int64(3)

	created, err := f.service.Create(context.Background(), member(2, shared.RoleAdmin), CreateTaskInput{
		Title:        "Review PR",
		AssignedToID: &assignee,
	})
	require.NoError(t, err)
	assert.Equal(t, assignee, created.AssignedToID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, created.ID, f.notifier.sent[0].taskID)
	assert.Equal(t, assignee, f.notifier.sent[0].assigneeID)
}

func TestCreateViewerForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), member(3, shared.RoleViewer), CreateTaskInput{Title: "Nope"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Empty(t, f.repo.tasks)
	assert.Empty(t, f.audit.entries, "denied operations must not be audited as the action")
}

func TestCreateCrossOrgAssigneeForbidden(t *testing.T) {
	f := newFixture(t)
	outsider := int64(9)

	_, err := f.service.Create(context.Background(), member(1, shared.RoleOwner), CreateTaskInput{
		Title:        "Cross org",
		AssignedToID: &outsider,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Empty(t, f.repo.tasks)
}

func TestCreateUnknownAssigneeForbidden(t *testing.T) {
	f := newFixture(t)
	ghost := int64(404)

	_, err := f.service.Create(context.Background(), member(1, shared.RoleOwner), CreateTaskInput{
		Title:        "Ghost assignee",
		AssignedToID: &ghost,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestListScopesViewerToOwnOrAssigned(t *testing.T) {
	f := newFixture(t,
		Task{ID: 10, Title: "assigned to viewer", OwnerID: 2, AssignedToID: 3, OrganizationID: 1},
		Task{ID: 11, Title: "owned by viewer", OwnerID: 3, AssignedToID: 2, OrganizationID: 1},
		Task{ID: 12, Title: "unrelated", OwnerID: 2, AssignedToID: 2, OrganizationID: 1},
		Task{ID: 13, Title: "other org", OwnerID: 3, AssignedToID: 3, OrganizationID: 2},
	)

	visible, err := f.service.List(context.Background(), member(3, shared.RoleViewer))
	require.NoError(t, err)

	ids := make([]int64, 0, len(visible))
	for _, task := range visible {
		ids = append(ids, task.ID)
	}
	assert.ElementsMatch(t, []int64{10, 11}, ids)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, shared.ActionViewTasks, f.audit.entries[0].Action)
	assert.Nil(t, f.audit.entries[0].ResourceID)
}

func TestListAdminSeesWholeOrg(t *testing.T) {
	f := newFixture(t,
		Task{ID: 10, OwnerID: 1, AssignedToID: 3, OrganizationID: 1},
		Task{ID: 11, OwnerID: 3, AssignedToID: 3, OrganizationID: 1},
		Task{ID: 12, OwnerID: 9, AssignedToID: 9, OrganizationID: 2},
	)

	visible, err := f.service.List(context.Background(), member(2, shared.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestUpdateAdminCannotTouchOthersTask(t *testing.T) {
	f := newFixture(t,
		Task{ID: 20, Title: "someone else's", OwnerID: 4, AssignedToID: 4, OrganizationID: 1, Status: StatusTodo},
	)
	title := "hijacked"

	_, err := f.service.Update(context.Background(), member(2, shared.RoleAdmin), 20, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	assert.Equal(t, "someone else's", f.repo.tasks[20].Title, "denied update must not mutate")
	assert.Zero(t, f.repo.updates)
	assert.Empty(t, f.audit.entries)
}

func TestUpdateAdminOwnTask(t *testing.T) {
	f := newFixture(t,
		Task{ID: 21, Title: "mine", OwnerID: 2, AssignedToID: 2, OrganizationID: 1, Status: StatusTodo},
	)
	status := StatusInProgress

	updated, err := f.service.Update(context.Background(), member(2, shared.RoleAdmin), 21, UpdateTaskInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, updated.Status)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, shared.ActionUpdateTask, f.audit.entries[0].Action)
}

func TestUpdateOwnerAnyTaskInOrg(t *testing.T) {
	f := newFixture(t,
		Task{ID: 22, Title: "admin's task", OwnerID: 2, AssignedToID: 2, OrganizationID: 1, Status: StatusTodo},
	)
	status := StatusDone

	updated, err := f.service.Update(context.Background(), member(1, shared.RoleOwner), 22, UpdateTaskInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, StatusDone, updated.Status)
}

func TestUpdateCrossOrgPresentsAsNotFound(t *testing.T) {
	f := newFixture(t,
		Task{ID: 23, Title: "foreign", OwnerID: 9, AssignedToID: 9, OrganizationID: 2, Status: StatusTodo},
	)
	title := "stolen"

	_, err := f.service.Update(context.Background(), member(1, shared.RoleOwner), 23, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "foreign", f.repo.tasks[23].Title)
}

func TestUpdateMissingTaskNotFound(t *testing.T) {
	f := newFixture(t)
	title := "nothing"

	_, err := f.service.Update(context.Background(), member(1, shared.RoleOwner), 404, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateReassignmentRevalidatesOrg(t *testing.T) {
	f := newFixture(t,
		Task{ID: 24, Title: "reassign me", OwnerID: 1, AssignedToID: 1, OrganizationID: 1, Status: StatusTodo},
	)
	outsider := int64(9)

	_, err := f.service.Update(context.Background(), member(1, shared.RoleOwner), 24, UpdateTaskInput{AssignedToID: &outsider})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, int64(1), f.repo.tasks[24].AssignedToID)
}

func TestUpdateReassignmentNotifiesNewAssignee(t *testing.T) {
	f := newFixture(t,
		Task{ID: 25, Title: "handoff", OwnerID: 1, AssignedToID: 1, OrganizationID: 1, Status: StatusTodo},
	)
	assignee := int64(3)

	_, err := f.service.Update(context.Background(), member(1, shared.RoleOwner), 25, UpdateTaskInput{AssignedToID: &assignee})
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, assignee, f.notifier.sent[0].assigneeID)
}

func TestDeleteAuditsTitle(t *testing.T) {
	f := newFixture(t,
		Task{ID: 30, Title: "Retire old API", OwnerID: 1, AssignedToID: 1, OrganizationID: 1, Status: StatusDone},
	)

	err := f.service.Delete(context.Background(), member(1, shared.RoleOwner), 30)
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.deletes)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, shared.ActionDeleteTask, entry.Action)
	assert.Equal(t, `title="Retire old API"`, entry.Detail)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, int64(30), *entry.ResourceID)
}

func TestDeleteViewerForbidden(t *testing.T) {
	f := newFixture(t,
		Task{ID: 31, Title: "viewer's own", OwnerID: 3, AssignedToID: 3, OrganizationID: 1},
	)

	err := f.service.Delete(context.Background(), member(3, shared.RoleViewer), 31)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Contains(t, f.repo.tasks, int64(31))
}

func TestDeleteCrossOrgNotFound(t *testing.T) {
	f := newFixture(t,
		Task{ID: 32, Title: "foreign", OwnerID: 9, AssignedToID: 9, OrganizationID: 2},
	)

	err := f.service.Delete(context.Background(), member(1, shared.RoleOwner), 32)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, f.repo.tasks, int64(32))
	assert.Zero(t, f.repo.deletes)
}
