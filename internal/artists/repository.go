package artists

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/backend/internal/models"
)

// Repository handles artist persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an artists repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an artist. Organization-owned artists start private.
func (r *Repository) Create(ctx context.Context, a *models.Artist) error {
	const q = `INSERT INTO artists (name, bio, image_url, organization_id, is_private)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	a.IsPrivate = a.OrganizationID != nil
	return r.pool.QueryRow(ctx, q, a.Name, a.Bio, a.ImageURL, a.OrganizationID, a.IsPrivate).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID returns an artist by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Artist, error) {
	const q = `SELECT id, name, bio, image_url, organization_id, is_private, created_at, updated_at
		FROM artists WHERE id = $1`
	var a models.Artist
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&a.ID, &a.Name, &a.Bio, &a.ImageURL, &a.OrganizationID, &a.IsPrivate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListPublic returns all public artists.
func (r *Repository) ListPublic(ctx context.Context) ([]models.Artist, error) {
	return r.list(ctx, `SELECT id, name, bio, image_url, organization_id, is_private, created_at, updated_at
		FROM artists WHERE is_private = false ORDER BY name`)
}

// ListForOrganization returns an organization's artists, private included.
func (r *Repository) ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Artist, error) {
	return r.list(ctx, `SELECT id, name, bio, image_url, organization_id, is_private, created_at, updated_at
		FROM artists WHERE organization_id = $1 ORDER BY name`, orgID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Artist, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Artist
	for rows.Next() {
		var a models.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio, &a.ImageURL, &a.OrganizationID, &a.IsPrivate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// EditableAttributes are the patchable artist fields.
type EditableAttributes struct {
	Name     *string `json:"name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Update applies non-nil attributes.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, attrs EditableAttributes) (*models.Artist, error) {
	const q = `UPDATE artists SET
			name = COALESCE($2, name),
			bio = COALESCE($3, bio),
			image_url = COALESCE($4, image_url),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, bio, image_url, organization_id, is_private, created_at, updated_at`
	var a models.Artist
	err := r.pool.QueryRow(ctx, q, id, attrs.Name, attrs.Bio, attrs.ImageURL).
		Scan(&a.ID, &a.Name, &a.Bio, &a.ImageURL, &a.OrganizationID, &a.IsPrivate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetPrivacy toggles the is_private flag.
func (r *Repository) SetPrivacy(ctx context.Context, id uuid.UUID, private bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE artists SET is_private = $2, updated_at = NOW() WHERE id = $1`, id, private)
	return err
}
