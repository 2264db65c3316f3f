package access

import (
	"context"

	"github.com/google/uuid"
)

// RoleSource supplies role assignments at request time. The production
// implementation reads from Postgres; tests use a map-backed fake. The
// gate never caches results: privacy flags and memberships are mutable
// and must be re-read per request.
type RoleSource interface {
	// GlobalRoles returns the user's global role names.
	GlobalRoles(ctx context.Context, userID uuid.UUID) ([]Role, error)
	// OrganizationRoles returns the user's role names within the
	// organization, empty when the user is not a member.
	OrganizationRoles(ctx context.Context, orgID, userID uuid.UUID) ([]Role, error)
}

// Gate answers authorization questions. It is read-only and safe for
// concurrent use.
type Gate struct {
	roles RoleSource
}

// NewGate creates an authorization gate over a role source.
func NewGate(roles RoleSource) *Gate {
	return &Gate{roles: roles}
}

// HasScope reports whether the user's effective scope set satisfies
// scope. Global roles are checked first; when they do not grant the scope
// and orgID is set, the user's roles within that organization are
// resolved and checked. A nil orgID with no global grant is a denial, not
// an error.
func (g *Gate) HasScope(ctx context.Context, userID uuid.UUID, scope Scope, orgID *uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	global, err := g.roles.GlobalRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	if Contains(Resolve(global), scope) {
		return true, nil
	}
	if orgID == nil {
		return false, nil
	}
	return g.HasOrganizationScope(ctx, userID, scope, *orgID)
}

// HasOrganizationScope checks scope against the user's organization-scoped
// roles only. Private resources use this form: an organization-private
// artist or venue requires org-scoped write scope regardless of any
// global grant.
func (g *Gate) HasOrganizationScope(ctx context.Context, userID uuid.UUID, scope Scope, orgID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	orgRoles, err := g.roles.OrganizationRoles(ctx, orgID, userID)
	if err != nil {
		return false, err
	}
	return Contains(Resolve(orgRoles), scope), nil
}

// CanView reports whether the user may read a possibly private resource.
// Public resources (not private, or without an owning organization) are
// readable by anyone, authenticated or not.
func (g *Gate) CanView(ctx context.Context, userID uuid.UUID, scope Scope, isPrivate bool, orgID *uuid.UUID) (bool, error) {
	if !isPrivate || orgID == nil {
		return true, nil
	}
	return g.HasOrganizationScope(ctx, userID, scope, *orgID)
}
