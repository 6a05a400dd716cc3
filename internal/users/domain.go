package users

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// User represents a user account. PasswordHash is only populated by lookups
// that explicitly need it and never serialized.
type User struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           shared.Role `json:"role"`
	OrganizationID int64       `json:"organizationId"`
	TeamID         *int64      `json:"teamId,omitempty"`
	PasswordHash   string      `json:"-"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Authenticated converts the stored account into the request identity shape.
func (u User) Authenticated() shared.AuthenticatedUser {
	return shared.AuthenticatedUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		TeamID:         u.TeamID,
	}
}
