package models

import (
	"time"

	"github.com/google/uuid"
)

// Artist is a performer. Artists with no owning organization are global
// and public; organization-owned artists start private and can be toggled.
type Artist struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Bio            string     `json:"bio"`
	ImageURL       *string    `json:"image_url,omitempty"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	IsPrivate      bool       `json:"is_private"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
