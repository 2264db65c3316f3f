package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/backend/internal/models"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (name, organization_id, venue_id, event_start, door_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Name, e.OrganizationID, e.VenueID, e.EventStart, e.DoorTime).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, name, organization_id, venue_id, event_start, door_time, promo_image_url, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&e.ID, &e.Name, &e.OrganizationID, &e.VenueID, &e.EventStart, &e.DoorTime, &e.PromoImageURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns all events, newest start first.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT id, name, organization_id, venue_id, event_start, door_time, promo_image_url, created_at, updated_at
		FROM events ORDER BY event_start DESC NULLS LAST, name`
	return r.list(ctx, q)
}

// ListForOrganization returns an organization's events.
func (r *Repository) ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT id, name, organization_id, venue_id, event_start, door_time, promo_image_url, created_at, updated_at
		FROM events WHERE organization_id = $1 ORDER BY event_start DESC NULLS LAST, name`
	return r.list(ctx, q, orgID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.OrganizationID, &e.VenueID, &e.EventStart, &e.DoorTime, &e.PromoImageURL, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// EditableAttributes are the patchable event fields.
type EditableAttributes struct {
	Name       *string    `json:"name,omitempty"`
	VenueID    *uuid.UUID `json:"venue_id,omitempty"`
	EventStart *time.Time `json:"event_start,omitempty"`
	DoorTime   *time.Time `json:"door_time,omitempty"`
}

// Update applies non-nil attributes.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, attrs EditableAttributes) (*models.Event, error) {
	const q = `UPDATE events SET
			name = COALESCE($2, name),
			venue_id = COALESCE($3, venue_id),
			event_start = COALESCE($4, event_start),
			door_time = COALESCE($5, door_time),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, organization_id, venue_id, event_start, door_time, promo_image_url, created_at, updated_at`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id, attrs.Name, attrs.VenueID, attrs.EventStart, attrs.DoorTime).
		Scan(&e.ID, &e.Name, &e.OrganizationID, &e.VenueID, &e.EventStart, &e.DoorTime, &e.PromoImageURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SetPromoImageURL records the event's promo image location.
func (r *Repository) SetPromoImageURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `UPDATE events SET promo_image_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}
