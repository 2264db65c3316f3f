package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a promoter/venue operator tenant.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrganizationUser links a user to an organization with a role name from
// the access package (OrgOwner, OrgMember).
type OrganizationUser struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Invite status values.
const (
	InviteStatusPending  = "Pending"
	InviteStatusAccepted = "Accepted"
	InviteStatusDeclined = "Declined"
)

// OrganizationInvite is a pending membership invitation. UserID is filled
// in when the invited email already belongs to a registered user.
type OrganizationInvite struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	InviteEmail    string     `json:"invite_email"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	SecurityToken  uuid.UUID  `json:"-"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
