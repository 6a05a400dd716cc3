package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/rbac"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskSelect = `
	SELECT t.id, t.title, t.description, t.owner_id, t.assigned_to_id, t.organization_id, t.status,
	       t.created_at, t.updated_at,
	       o.id, o.name, o.email,
	       a.id, a.name, a.email
	FROM tasks t
	JOIN users o ON o.id = t.owner_id
	JOIN users a ON a.id = t.assigned_to_id`

// CreateTask inserts a task and returns it with owner/assignee resolved.
func (r *Repository) CreateTask(ctx context.Context, task Task) (*Task, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (title, description, owner_id, assigned_to_id, organization_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		task.Title, task.Description, task.OwnerID, task.AssignedToID, task.OrganizationID, task.Status).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.FindTask(ctx, id)
}

// FindTask fetches a task by id with owner/assignee resolved.
func (r *Repository) FindTask(ctx context.Context, id int64) (*Task, error) {
	row := r.pool.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListTasks returns the tasks matching the scope, newest first.
func (r *Repository) ListTasks(ctx context.Context, scope rbac.TaskScope) ([]Task, error) {
	query := taskSelect + ` WHERE t.organization_id = $1`
	args := []any{scope.OrganizationID}
	if scope.RestrictedTo != 0 {
		query += ` AND (t.assigned_to_id = $2 OR t.owner_id = $2)`
		args = append(args, scope.RestrictedTo)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask applies the non-nil patch fields and bumps updated_at. Owner
// and organization columns are deliberately absent from the statement.
func (r *Repository) UpdateTask(ctx context.Context, id int64, patch UpdateTaskInput) (*Task, error) {
	set := "updated_at = NOW()"
	args := []any{id}
	next := 2
	add := func(column string, value any) {
		set += fmt.Sprintf(", %s = $%d", column, next)
		args = append(args, value)
		next++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.AssignedToID != nil {
		add("assigned_to_id", *patch.AssignedToID)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $1`, set), args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindTask(ctx, id)
}

// DeleteTask removes a task by id. Returns shared.ErrNotFound if nothing was
// deleted.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var task Task
	var owner, assignee UserSummary
	if err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.OwnerID, &task.AssignedToID, &task.OrganizationID, &task.Status,
		&task.CreatedAt, &task.UpdatedAt,
		&owner.ID, &owner.Name, &owner.Email,
		&assignee.ID, &assignee.Name, &assignee.Email,
	); err != nil {
		return nil, err
	}
	task.Owner = &owner
	task.AssignedTo = &assignee
	return &task, nil
}
