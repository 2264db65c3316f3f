package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the pgx-backed RoleSource.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an access repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GlobalRoles returns the user's global role names from the users table.
// A missing user yields no roles rather than an error; the gate then
// denies.
func (r *Repository) GlobalRoles(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	const q = `SELECT roles FROM users WHERE id = $1`
	var names []string
	err := r.pool.QueryRow(ctx, q, userID).Scan(&names)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ParseRoles(names), nil
}

// OrganizationRoles returns the user's role within the organization,
// empty when not a member.
func (r *Repository) OrganizationRoles(ctx context.Context, orgID, userID uuid.UUID) ([]Role, error) {
	const q = `SELECT role FROM organization_users WHERE organization_id = $1 AND user_id = $2`
	var name string
	err := r.pool.QueryRow(ctx, q, orgID, userID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return []Role{Role(name)}, nil
}
