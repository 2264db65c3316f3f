package models

import (
	"time"

	"github.com/google/uuid"
)

// Venue is an event location, globally public or organization-private.
type Venue struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	Country        string     `json:"country"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	IsPrivate      bool       `json:"is_private"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
