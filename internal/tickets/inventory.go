package tickets

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/apperr"
)

// Ledger tracks ticket-type inventory: capacity minus the signed sum of
// order item quantities across every pricing period of the type, Deleted
// periods included. Reserve and Release each run in a single transaction
// holding a row lock on the ticket_types row, so two concurrent writers
// against the same type serialize and the remaining count can never go
// negative.
type Ledger struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewLedger creates an inventory ledger.
func NewLedger(pool *pgxpool.Pool, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{pool: pool, logger: logger}
}

// remainingCount applies the inventory invariant.
func remainingCount(capacity, consumed int) int {
	return capacity - consumed
}

// checkReserve rejects a reservation that would drive remaining negative.
func checkReserve(capacity, consumed, quantity int) error {
	if quantity <= 0 {
		return apperr.Validation("quantity", "quantity must be positive")
	}
	if quantity > remainingCount(capacity, consumed) {
		return apperr.Conflict("insufficient ticket inventory")
	}
	return nil
}

// checkRelease rejects releasing more than the reservation still holds.
// Over-release is a caller logic error, never silently clamped.
func checkRelease(reserved, released, quantity int) error {
	if quantity <= 0 {
		return apperr.Validation("quantity", "quantity must be positive")
	}
	if quantity > reserved-released {
		return apperr.Validation("quantity", "released quantity exceeds reserved quantity")
	}
	return nil
}

// Remaining returns capacity minus consumed for a ticket type.
func (l *Ledger) Remaining(ctx context.Context, ticketTypeID uuid.UUID) (int, error) {
	var capacity, consumed int
	err := l.pool.QueryRow(ctx, `
		SELECT tt.capacity,
		       COALESCE((SELECT SUM(oi.quantity)
		                 FROM order_items oi
		                 JOIN ticket_pricing tp ON tp.id = oi.ticket_pricing_id
		                 WHERE tp.ticket_type_id = tt.id), 0)
		FROM ticket_types tt WHERE tt.id = $1`, ticketTypeID).Scan(&capacity, &consumed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound("ticket type not found")
		}
		return 0, apperr.Internal("load remaining inventory", err)
	}
	return remainingCount(capacity, consumed), nil
}

// Reserve atomically adds quantity tickets of the given pricing to an
// order. The ticket_types row lock serializes the remaining check against
// concurrent reservations; when capacity is short the transaction rolls
// back with no partial effect.
func (l *Ledger) Reserve(ctx context.Context, orderID, pricingID uuid.UUID, quantity int) (*models.OrderItem, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Internal("begin reserve", err)
	}
	defer tx.Rollback(ctx)

	var ticketTypeID uuid.UUID
	var capacity int
	var price int64
	var status models.TicketPricingStatus
	err = tx.QueryRow(ctx, `
		SELECT tt.id, tt.capacity, tp.price_in_cents, tp.status
		FROM ticket_pricing tp
		JOIN ticket_types tt ON tt.id = tp.ticket_type_id
		WHERE tp.id = $1
		FOR UPDATE OF tt`, pricingID).Scan(&ticketTypeID, &capacity, &price, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("ticket pricing not found")
		}
		return nil, apperr.Internal("load ticket pricing", err)
	}
	if status != models.TicketPricingPublished {
		return nil, apperr.Validation("ticket_pricing_id", "ticket pricing is no longer available")
	}

	var consumed int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN ticket_pricing tp ON tp.id = oi.ticket_pricing_id
		WHERE tp.ticket_type_id = $1`, ticketTypeID).Scan(&consumed)
	if err != nil {
		return nil, apperr.Internal("sum reserved quantities", err)
	}
	if err := checkReserve(capacity, consumed, quantity); err != nil {
		return nil, err
	}

	item := &models.OrderItem{
		OrderID:          orderID,
		TicketPricingID:  pricingID,
		Quantity:         quantity,
		UnitPriceInCents: price,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, ticket_pricing_id, quantity, unit_price_in_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		orderID, pricingID, quantity, price).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, apperr.Internal("insert order item", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal("commit reserve", err)
	}
	l.logger.Debug("tickets reserved",
		zap.String("order_id", orderID.String()),
		zap.String("ticket_pricing_id", pricingID.String()),
		zap.Int("quantity", quantity),
	)
	return item, nil
}

// Release returns quantity tickets from an earlier reservation, recorded
// as a negative order item referencing the original. Releasing more than
// the reservation still holds is rejected.
func (l *Ledger) Release(ctx context.Context, orderItemID uuid.UUID, quantity int) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return apperr.Internal("begin release", err)
	}
	defer tx.Rollback(ctx)

	var orderID, pricingID uuid.UUID
	var reserved int
	var price int64
	err = tx.QueryRow(ctx, `
		SELECT order_id, ticket_pricing_id, quantity, unit_price_in_cents
		FROM order_items WHERE id = $1 AND quantity > 0
		FOR UPDATE`, orderItemID).Scan(&orderID, &pricingID, &reserved, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("order item not found")
		}
		return apperr.Internal("load order item", err)
	}

	var released int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(-SUM(quantity), 0)
		FROM order_items WHERE refunded_order_item_id = $1`, orderItemID).Scan(&released)
	if err != nil {
		return apperr.Internal("sum released quantities", err)
	}
	if err := checkRelease(reserved, released, quantity); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_items (order_id, ticket_pricing_id, quantity, unit_price_in_cents, refunded_order_item_id)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, pricingID, -quantity, price, orderItemID)
	if err != nil {
		return apperr.Internal("insert release item", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal("commit release", err)
	}
	l.logger.Debug("tickets released",
		zap.String("order_item_id", orderItemID.String()),
		zap.Int("quantity", quantity),
	)
	return nil
}
