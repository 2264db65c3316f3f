package tickets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/backend/internal/models"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repository
// methods can run inside a caller-owned transaction when the write needs
// to be atomic with a validation read.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository handles ticket type and ticket pricing persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tickets repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for callers that open transactions
// spanning repository calls.
func (r *Repository) Pool() *pgxpool.Pool { return r.pool }

// LockTicketType takes a row lock on the ticket type, serializing
// concurrent pricing writes and reservations against it for the duration
// of the transaction.
func (r *Repository) LockTicketType(ctx context.Context, q Querier, id uuid.UUID) error {
	var locked uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM ticket_types WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return pgx.ErrNoRows
	}
	return err
}

// CreateTicketType inserts a ticket type.
func (r *Repository) CreateTicketType(ctx context.Context, q Querier, tt *models.TicketType) error {
	const sql = `INSERT INTO ticket_types (event_id, name, capacity, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return q.QueryRow(ctx, sql, tt.EventID, tt.Name, tt.Capacity, tt.StartDate, tt.EndDate).
		Scan(&tt.ID, &tt.CreatedAt, &tt.UpdatedAt)
}

// GetTicketType returns a ticket type by id.
func (r *Repository) GetTicketType(ctx context.Context, id uuid.UUID) (*models.TicketType, error) {
	const sql = `SELECT id, event_id, name, capacity, start_date, end_date, created_at, updated_at
		FROM ticket_types WHERE id = $1`
	var tt models.TicketType
	err := r.pool.QueryRow(ctx, sql, id).
		Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Capacity, &tt.StartDate, &tt.EndDate, &tt.CreatedAt, &tt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// ListTicketTypesByEvent returns all ticket types for an event.
func (r *Repository) ListTicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]models.TicketType, error) {
	const sql = `SELECT id, event_id, name, capacity, start_date, end_date, created_at, updated_at
		FROM ticket_types WHERE event_id = $1 ORDER BY start_date, name`
	rows, err := r.pool.Query(ctx, sql, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TicketType
	for rows.Next() {
		var tt models.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Capacity, &tt.StartDate, &tt.EndDate, &tt.CreatedAt, &tt.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, tt)
	}
	return list, rows.Err()
}

// TicketTypeEditableAttributes are the patchable ticket type fields.
type TicketTypeEditableAttributes struct {
	Name      *string    `json:"name,omitempty"`
	Capacity  *int       `json:"capacity,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// UpdateTicketType applies non-nil attributes.
func (r *Repository) UpdateTicketType(ctx context.Context, q Querier, id uuid.UUID, attrs TicketTypeEditableAttributes) (*models.TicketType, error) {
	const sql = `UPDATE ticket_types SET
			name = COALESCE($2, name),
			capacity = COALESCE($3, capacity),
			start_date = COALESCE($4, start_date),
			end_date = COALESCE($5, end_date),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, event_id, name, capacity, start_date, end_date, created_at, updated_at`
	var tt models.TicketType
	err := q.QueryRow(ctx, sql, id, attrs.Name, attrs.Capacity, attrs.StartDate, attrs.EndDate).
		Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Capacity, &tt.StartDate, &tt.EndDate, &tt.CreatedAt, &tt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// InsertPricing inserts a pricing period as Published.
func (r *Repository) InsertPricing(ctx context.Context, q Querier, p *models.TicketPricing) error {
	const sql = `INSERT INTO ticket_pricing (ticket_type_id, name, status, price_in_cents, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	if p.Status == "" {
		p.Status = models.TicketPricingPublished
	}
	return q.QueryRow(ctx, sql, p.TicketTypeID, p.Name, p.Status, p.PriceInCents, p.StartDate, p.EndDate).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// TicketPricingEditableAttributes are the patchable pricing fields.
type TicketPricingEditableAttributes struct {
	Name         *string    `json:"name,omitempty"`
	PriceInCents *int64     `json:"price_in_cents,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// UpdatePricing applies non-nil attributes to a Published pricing period.
func (r *Repository) UpdatePricing(ctx context.Context, q Querier, id uuid.UUID, attrs TicketPricingEditableAttributes) (*models.TicketPricing, error) {
	const sql = `UPDATE ticket_pricing SET
			name = COALESCE($2, name),
			price_in_cents = COALESCE($3, price_in_cents),
			start_date = COALESCE($4, start_date),
			end_date = COALESCE($5, end_date),
			updated_at = NOW()
		WHERE id = $1 AND status = 'Published'
		RETURNING id, ticket_type_id, name, status, price_in_cents, start_date, end_date, created_at, updated_at`
	var p models.TicketPricing
	err := q.QueryRow(ctx, sql, id, attrs.Name, attrs.PriceInCents, attrs.StartDate, attrs.EndDate).
		Scan(&p.ID, &p.TicketTypeID, &p.Name, &p.Status, &p.PriceInCents, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPricing returns a pricing period by id.
func (r *Repository) GetPricing(ctx context.Context, q Querier, id uuid.UUID) (*models.TicketPricing, error) {
	const sql = `SELECT id, ticket_type_id, name, status, price_in_cents, start_date, end_date, created_at, updated_at
		FROM ticket_pricing WHERE id = $1`
	var p models.TicketPricing
	err := q.QueryRow(ctx, sql, id).
		Scan(&p.ID, &p.TicketTypeID, &p.Name, &p.Status, &p.PriceInCents, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPublishedPricing returns the Published periods of a ticket type,
// the working set for overlap validation and current-price resolution.
func (r *Repository) ListPublishedPricing(ctx context.Context, q Querier, ticketTypeID uuid.UUID) ([]models.TicketPricing, error) {
	const sql = `SELECT id, ticket_type_id, name, status, price_in_cents, start_date, end_date, created_at, updated_at
		FROM ticket_pricing WHERE ticket_type_id = $1 AND status = 'Published'
		ORDER BY start_date`
	rows, err := q.Query(ctx, sql, ticketTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TicketPricing
	for rows.Next() {
		var p models.TicketPricing
		if err := rows.Scan(&p.ID, &p.TicketTypeID, &p.Name, &p.Status, &p.PriceInCents, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountOrderItemsForPricing returns how many order items reference the
// pricing period, deciding hard delete vs soft delete.
func (r *Repository) CountOrderItemsForPricing(ctx context.Context, q Querier, pricingID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM order_items WHERE ticket_pricing_id = $1`, pricingID).Scan(&n)
	return n, err
}

// DeletePricing removes the row outright (only valid when unreferenced).
func (r *Repository) DeletePricing(ctx context.Context, q Querier, id uuid.UUID) error {
	_, err := q.Exec(ctx, `DELETE FROM ticket_pricing WHERE id = $1`, id)
	return err
}

// MarkPricingDeleted flips the period to Deleted, keeping the row for
// order linkage.
func (r *Repository) MarkPricingDeleted(ctx context.Context, q Querier, id uuid.UUID) error {
	_, err := q.Exec(ctx, `UPDATE ticket_pricing SET status = 'Deleted', updated_at = NOW() WHERE id = $1`, id)
	return err
}

// EventOrganization returns the owning organization of the ticket type's
// event, for authorization checks.
func (r *Repository) EventOrganization(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT organization_id FROM events WHERE id = $1`, eventID).Scan(&orgID)
	return orgID, err
}
