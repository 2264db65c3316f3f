package models

import (
	"time"

	"github.com/google/uuid"
)

// Order status values.
const (
	OrderStatusOpen      = "Open"
	OrderStatusCancelled = "Cancelled"
)

// Order aggregates ticket reservations for a user.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Status    string      `json:"status"`
	Items     []OrderItem `json:"items,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderItem is a signed ticket quantity delta against a pricing period:
// positive on purchase, negative on partial release/refund. Negative rows
// reference the reservation they release via RefundedOrderItemID.
type OrderItem struct {
	ID                  uuid.UUID  `json:"id"`
	OrderID             uuid.UUID  `json:"order_id"`
	TicketPricingID     uuid.UUID  `json:"ticket_pricing_id"`
	Quantity            int        `json:"quantity"`
	UnitPriceInCents    int64      `json:"unit_price_in_cents"`
	RefundedOrderItemID *uuid.UUID `json:"refunded_order_item_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
