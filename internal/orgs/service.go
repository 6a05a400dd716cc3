package orgs

import (
	"context"
	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RepositoryPort defines data access methods for organizations.
type RepositoryPort interface {
	CountOrganizations(ctx context.Context) (int64, error)
	CreateOrganization(ctx context.Context, name string) (*Organization, error)
	CreateTeam(ctx context.Context, organizationID int64, name string) (*Team, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	GetOrganization(ctx context.Context, id int64) (*Organization, error)
}

// Service handles organization lookups and first-run seeding.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

var seedTeams = []string{"engineering", "marketing", "design"}

// Seed creates one demo organization with three teams on an empty database.
// It is a no-op when any organization already exists.
func (s *Service) Seed(ctx context.Context) error {
	count, err := s.repo.CountOrganizations(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("seed skipped, organizations already exist", slog.Int64("count", count))
		return nil
	}

	title := cases.Title(language.English)
	org, err := s.repo.CreateOrganization(ctx, title.String("ecommerce"))
	if err != nil {
		return err
	}
	for _, name := range seedTeams {
		team, err := s.repo.CreateTeam(ctx, org.ID, title.String(name))
		if err != nil {
			return err
		}
		s.logger.Info("seeded team", slog.Int64("id", team.ID), slog.String("name", team.Name))
	}
	s.logger.Info("seeded organization", slog.Int64("id", org.ID), slog.String("name", org.Name))
	return nil
}

// List returns all organizations with their teams.
func (s *Service) List(ctx context.Context) ([]Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

// Get returns one organization with its teams.
func (s *Service) Get(ctx context.Context, id int64) (*Organization, error) {
	return s.repo.GetOrganization(ctx, id)
}
