// Package access implements role-to-scope resolution and the
// authorization gate used by every mutating endpoint.
package access

import "sort"

// Role is a named bundle of scopes assigned to a user globally or within
// an organization.
type Role string

const (
	RoleUser      Role = "User"
	RoleOrgMember Role = "OrgMember"
	RoleOrgOwner  Role = "OrgOwner"
	RoleAdmin     Role = "Admin"
)

// Scope is an atomic permission token required to perform an operation.
type Scope string

const (
	ScopeArtistWrite              Scope = "artist:write"
	ScopeEventWrite               Scope = "event:write"
	ScopeEventInterest            Scope = "event:interest"
	ScopeOrderMakeExternalPayment Scope = "order::make-external-payment"
	ScopeOrgAdmin                 Scope = "org:admin"
	ScopeOrgRead                  Scope = "org:read"
	ScopeOrgWrite                 Scope = "org:write"
	ScopeRegionWrite              Scope = "region:write"
	ScopeUserRead                 Scope = "user:read"
	ScopeTicketAdmin              Scope = "ticket:admin"
	ScopeVenueWrite               Scope = "venue:write"
)

// roleParent is the inheritance chain: a role grants its direct scopes
// plus everything its parent grants. The graph is a data-driven parent
// pointer map, acyclic, one parent per role.
var roleParent = map[Role]Role{
	RoleAdmin:     RoleOrgOwner,
	RoleOrgOwner:  RoleOrgMember,
	RoleOrgMember: RoleUser,
}

var directScopes = map[Role][]Scope{
	RoleUser: {ScopeEventInterest},
	RoleOrgMember: {
		ScopeArtistWrite,
		ScopeEventWrite,
		ScopeOrgRead,
		ScopeTicketAdmin,
		ScopeVenueWrite,
	},
	RoleOrgOwner: {
		ScopeOrgWrite,
		ScopeUserRead,
	},
	RoleAdmin: {
		ScopeOrderMakeExternalPayment,
		ScopeOrgAdmin,
		ScopeRegionWrite,
	},
}

// Resolve maps a set of role names to a sorted, deduplicated scope list.
// Unknown roles contribute no scopes; callers deny scope-gated operations
// against users holding only unknown roles. The result depends only on
// the set of roles, not their order.
func Resolve(roles []Role) []Scope {
	seen := make(map[Scope]struct{})
	for _, role := range roles {
		for _, s := range scopesForRole(role) {
			seen[s] = struct{}{}
		}
	}
	scopes := make([]Scope, 0, len(seen))
	for s := range seen {
		scopes = append(scopes, s)
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i] < scopes[j] })
	return scopes
}

// scopesForRole walks the inheritance chain from role to the root,
// collecting each visited role's direct scopes.
func scopesForRole(role Role) []Scope {
	var scopes []Scope
	for {
		direct, ok := directScopes[role]
		if !ok {
			return scopes
		}
		scopes = append(scopes, direct...)
		parent, ok := roleParent[role]
		if !ok {
			return scopes
		}
		role = parent
	}
}

// Contains reports whether scope is in the resolved scope list.
func Contains(scopes []Scope, scope Scope) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ParseRoles converts stored role name strings to Roles. Unrecognized
// names are kept as-is; Resolve treats them as zero-scope.
func ParseRoles(names []string) []Role {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		roles = append(roles, Role(n))
	}
	return roles
}
