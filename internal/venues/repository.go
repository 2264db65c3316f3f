package venues

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/backend/internal/models"
)

// Repository handles venue persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a venues repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a venue. Organization-owned venues start private.
func (r *Repository) Create(ctx context.Context, v *models.Venue) error {
	const q = `INSERT INTO venues (name, address, city, country, organization_id, is_private)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	v.IsPrivate = v.OrganizationID != nil
	return r.pool.QueryRow(ctx, q, v.Name, v.Address, v.City, v.Country, v.OrganizationID, v.IsPrivate).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// GetByID returns a venue by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Venue, error) {
	const q = `SELECT id, name, address, city, country, organization_id, is_private, created_at, updated_at
		FROM venues WHERE id = $1`
	var v models.Venue
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.Country, &v.OrganizationID, &v.IsPrivate, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListPublic returns all public venues.
func (r *Repository) ListPublic(ctx context.Context) ([]models.Venue, error) {
	return r.list(ctx, `SELECT id, name, address, city, country, organization_id, is_private, created_at, updated_at
		FROM venues WHERE is_private = false ORDER BY name`)
}

// ListForOrganization returns an organization's venues, private included.
func (r *Repository) ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Venue, error) {
	return r.list(ctx, `SELECT id, name, address, city, country, organization_id, is_private, created_at, updated_at
		FROM venues WHERE organization_id = $1 ORDER BY name`, orgID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Venue, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Venue
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.Country, &v.OrganizationID, &v.IsPrivate, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// EditableAttributes are the patchable venue fields.
type EditableAttributes struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	Country *string `json:"country,omitempty"`
}

// Update applies non-nil attributes.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, attrs EditableAttributes) (*models.Venue, error) {
	const q = `UPDATE venues SET
			name = COALESCE($2, name),
			address = COALESCE($3, address),
			city = COALESCE($4, city),
			country = COALESCE($5, country),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, address, city, country, organization_id, is_private, created_at, updated_at`
	var v models.Venue
	err := r.pool.QueryRow(ctx, q, id, attrs.Name, attrs.Address, attrs.City, attrs.Country).
		Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.Country, &v.OrganizationID, &v.IsPrivate, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SetPrivacy toggles the is_private flag.
func (r *Repository) SetPrivacy(ctx context.Context, id uuid.UUID, private bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE venues SET is_private = $2, updated_at = NOW() WHERE id = $1`, id, private)
	return err
}
