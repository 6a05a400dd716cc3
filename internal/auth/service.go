package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/identity"
	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/internal/users"
)

// UserStore is the slice of the users service the auth flows need.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	Create(ctx context.Context, user users.User) (*users.User, error)
}

// TokenIssuer signs tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(user users.User) (identity.Token, error)
}

// Revoker invalidates a token id until its expiry.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// Service wraps authentication business rules.
type Service struct {
	users       UserStore
	issuer      TokenIssuer
	revocations Revoker
}

// NewService constructs a new Service.
func NewService(store UserStore, issuer TokenIssuer, revocations Revoker) *Service {
	return &Service{users: store, issuer: issuer, revocations: revocations}
}

// RegisterInput carries the fields for account creation.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           shared.Role
	OrganizationID int64
	TeamID         *int64
}

// Session is the outcome of a successful register or login.
type Session struct {
	User  users.User
	Token identity.Token
}

// Register creates an account and signs a token for it.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	created, err := s.users.Create(ctx, users.User{
		Name:           strings.TrimSpace(input.Name),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		Role:           input.Role,
		OrganizationID: input.OrganizationID,
		TeamID:         input.TeamID,
		PasswordHash:   string(hash),
	})
	if err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(*created)
	if err != nil {
		return nil, err
	}
	return &Session{User: *created, Token: token}, nil
}

// Authenticate validates email/password credentials and signs a token.
// Every failure presents uniformly as invalid credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(*user)
	if err != nil {
		return nil, err
	}
	return &Session{User: *user, Token: token}, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.revocations.Revoke(ctx, tokenID, expiresAt)
}
