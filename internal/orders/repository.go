package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/backend/internal/models"
)

// Repository handles order persistence. Order items are written by the
// inventory ledger; this repository reads them back for display.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an orders repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an open order for the user.
func (r *Repository) Create(ctx context.Context, o *models.Order) error {
	const q = `INSERT INTO orders (user_id, status) VALUES ($1, 'Open')
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, o.UserID).
		Scan(&o.ID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
}

// GetByID returns an order with its items.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	const q = `SELECT id, user_id, status, created_at, updated_at FROM orders WHERE id = $1`
	var o models.Order
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// ListForUser returns the user's orders, newest first, without items.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	const q = `SELECT id, user_id, status, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// GetItem returns a single order item.
func (r *Repository) GetItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	const q = `SELECT id, order_id, ticket_pricing_id, quantity, unit_price_in_cents, refunded_order_item_id, created_at, updated_at
		FROM order_items WHERE id = $1`
	var it models.OrderItem
	err := r.pool.QueryRow(ctx, q, itemID).
		Scan(&it.ID, &it.OrderID, &it.TicketPricingID, &it.Quantity, &it.UnitPriceInCents, &it.RefundedOrderItemID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) listItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	const q = `SELECT id, order_id, ticket_pricing_id, quantity, unit_price_in_cents, refunded_order_item_id, created_at, updated_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.TicketPricingID, &it.Quantity, &it.UnitPriceInCents, &it.RefundedOrderItemID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
