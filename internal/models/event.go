package models

import (
	"time"

	"github.com/google/uuid"
)

// Event belongs to an organization and (optionally) a venue.
type Event struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	VenueID        *uuid.UUID `json:"venue_id,omitempty"`
	EventStart     *time.Time `json:"event_start,omitempty"`
	DoorTime       *time.Time `json:"door_time,omitempty"`
	PromoImageURL  *string    `json:"promo_image_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
