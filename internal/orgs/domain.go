package orgs

import "time"

// Organization is the tenant boundary. All authorization and scoping is
// anchored to it.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Teams     []Team    `json:"teams,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Team is an optional grouping inside an organization.
type Team struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	OrganizationID int64  `json:"organizationId"`
}
