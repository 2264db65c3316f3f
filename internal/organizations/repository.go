package organizations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/backend/internal/models"
)

// Repository handles organization, membership, and invite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create creates an organization.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (name, address, city, country)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, org.Name, org.Address, org.City, org.Country).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, COALESCE(address,''), COALESCE(city,''), COALESCE(country,''), created_at, updated_at
		FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&org.ID, &org.Name, &org.Address, &org.City, &org.Country, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// EditableAttributes are the patchable organization fields.
type EditableAttributes struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	Country *string `json:"country,omitempty"`
}

// Update applies non-nil attributes.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, attrs EditableAttributes) (*models.Organization, error) {
	const q = `UPDATE organizations SET
			name = COALESCE($2, name),
			address = COALESCE($3, address),
			city = COALESCE($4, city),
			country = COALESCE($5, country),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, COALESCE(address,''), COALESCE(city,''), COALESCE(country,''), created_at, updated_at`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id, attrs.Name, attrs.Address, attrs.City, attrs.Country).
		Scan(&org.ID, &org.Name, &org.Address, &org.City, &org.Country, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// AddUser adds a user to an organization with a role.
func (r *Repository) AddUser(ctx context.Context, orgID, userID uuid.UUID, role string) error {
	const q = `INSERT INTO organization_users (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()`
	_, err := r.pool.Exec(ctx, q, orgID, userID, role)
	return err
}

// RemoveUser removes a user from an organization.
func (r *Repository) RemoveUser(ctx context.Context, orgID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organization_users WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	return err
}

// ListForUser returns organizations the user is a member of.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	const q = `SELECT o.id, o.name, COALESCE(o.address,''), COALESCE(o.city,''), COALESCE(o.country,''), o.created_at, o.updated_at
		FROM organizations o
		INNER JOIN organization_users ou ON ou.organization_id = o.id
		WHERE ou.user_id = $1
		ORDER BY o.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.City, &o.Country, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// ListAll returns every organization, for platform admins.
func (r *Repository) ListAll(ctx context.Context) ([]*models.Organization, error) {
	const q = `SELECT id, name, COALESCE(address,''), COALESCE(city,''), COALESCE(country,''), created_at, updated_at
		FROM organizations ORDER BY name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.City, &o.Country, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// Member represents an organization member with user details.
type Member struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	AddedAt  time.Time `json:"added_at"`
}

// ListMembers returns members of an organization.
func (r *Repository) ListMembers(ctx context.Context, orgID uuid.UUID) ([]Member, error) {
	const q = `SELECT ou.id, ou.user_id, u.email, COALESCE(u.full_name, ''), ou.role, ou.created_at
		FROM organization_users ou
		INNER JOIN users u ON u.id = ou.user_id
		WHERE ou.organization_id = $1
		ORDER BY ou.created_at ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.UserID, &m.Email, &m.FullName, &m.Role, &m.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CreateInvite inserts a pending invite with a fresh security token.
func (r *Repository) CreateInvite(ctx context.Context, inv *models.OrganizationInvite) error {
	const q = `INSERT INTO organization_invites (organization_id, invite_email, user_id, security_token, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	inv.SecurityToken = uuid.New()
	inv.Status = models.InviteStatusPending
	return r.pool.QueryRow(ctx, q, inv.OrganizationID, inv.InviteEmail, inv.UserID, inv.SecurityToken, inv.Status).
		Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

// GetInviteByToken returns a pending invite by its security token.
func (r *Repository) GetInviteByToken(ctx context.Context, token uuid.UUID) (*models.OrganizationInvite, error) {
	const q = `SELECT id, organization_id, invite_email, user_id, security_token, status, created_at, updated_at
		FROM organization_invites WHERE security_token = $1 AND status = 'Pending'`
	var inv models.OrganizationInvite
	err := r.pool.QueryRow(ctx, q, token).
		Scan(&inv.ID, &inv.OrganizationID, &inv.InviteEmail, &inv.UserID, &inv.SecurityToken, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// SetInviteStatus transitions a pending invite, recording who actioned it.
func (r *Repository) SetInviteStatus(ctx context.Context, inviteID, userID uuid.UUID, status string) error {
	const q = `UPDATE organization_invites SET status = $3, user_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'Pending'`
	_, err := r.pool.Exec(ctx, q, inviteID, userID, status)
	return err
}
