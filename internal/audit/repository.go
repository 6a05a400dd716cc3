package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for audit entries.
// Entries are insert-only; no update or delete statements exist here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AppendEntry inserts a single audit entry.
func (r *Repository) AppendEntry(ctx context.Context, entry Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (user_id, user_email, user_role, action, resource_id, detail, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.UserID, entry.UserEmail, entry.UserRole, entry.Action, entry.ResourceID, entry.Detail, entry.Timestamp)
	return err
}

// ListEntries returns all entries newest first.
func (r *Repository) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, user_email, user_role, action, resource_id, detail, occurred_at
		 FROM audit_logs
		 ORDER BY occurred_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.UserEmail, &entry.UserRole, &entry.Action, &entry.ResourceID, &entry.Detail, &entry.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
