package orgs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

// CountOrganizations returns the number of organizations.
func (r *Repository) CountOrganizations(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&count)
	return count, err
}

// CreateOrganization inserts an organization.
func (r *Repository) CreateOrganization(ctx context.Context, name string) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ($1) RETURNING id, name, created_at`,
		name).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateTeam inserts a team in an organization.
func (r *Repository) CreateTeam(ctx context.Context, organizationID int64, name string) (*Team, error) {
	var team Team
	err := r.pool.QueryRow(ctx,
		`INSERT INTO teams (name, organization_id) VALUES ($1, $2) RETURNING id, name, organization_id`,
		name, organizationID).Scan(&team.ID, &team.Name, &team.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListOrganizations returns all organizations with teams attached, id
// ascending.
func (r *Repository) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var organizations []Organization
	index := make(map[int64]int)
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
			return nil, err
		}
		index[org.ID] = len(organizations)
		organizations = append(organizations, org)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	teamRows, err := r.pool.Query(ctx, `SELECT id, name, organization_id FROM teams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer teamRows.Close()
	for teamRows.Next() {
		var team Team
		if err := teamRows.Scan(&team.ID, &team.Name, &team.OrganizationID); err != nil {
			return nil, err
		}
		if i, ok := index[team.OrganizationID]; ok {
			organizations[i].Teams = append(organizations[i].Teams, team)
		}
	}
	if err := teamRows.Err(); err != nil {
		return nil, err
	}
	return organizations, nil
}

// GetOrganization fetches one organization with its teams.
func (r *Repository) GetOrganization(ctx context.Context, id int64) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = $1`, id).
		Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, organization_id FROM teams WHERE organization_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var team Team
		if err := rows.Scan(&team.ID, &team.Name, &team.OrganizationID); err != nil {
			return nil, err
		}
		org.Teams = append(org.Teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &org, nil
}
