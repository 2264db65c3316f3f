package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketPricingStatus is the lifecycle state of a pricing period.
type TicketPricingStatus string

const (
	// TicketPricingPublished periods participate in overlap validation and
	// current-price resolution.
	TicketPricingPublished TicketPricingStatus = "Published"
	// TicketPricingDeleted periods are retained for order linkage only.
	TicketPricingDeleted TicketPricingStatus = "Deleted"
)

// TicketType is a category of ticket for an event with its own capacity
// and price schedule.
type TicketType struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketPricing is a time-bounded price for a ticket type. The
// [StartDate, EndDate) window is half-open.
type TicketPricing struct {
	ID           uuid.UUID           `json:"id"`
	TicketTypeID uuid.UUID           `json:"ticket_type_id"`
	Name         string              `json:"name"`
	Status       TicketPricingStatus `json:"status"`
	PriceInCents int64               `json:"price_in_cents"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// DisplayTicketType is a ticket type with its resolved current price and
// remaining inventory, for event listings.
type DisplayTicketType struct {
	TicketType
	Remaining      int            `json:"remaining"`
	CurrentPricing *TicketPricing `json:"current_pricing,omitempty"`
}
