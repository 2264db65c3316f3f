package access

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOrgOwner(t *testing.T) {
	scopes := Resolve([]Role{RoleOrgOwner})
	assert.Equal(t, []Scope{
		ScopeArtistWrite,
		ScopeEventInterest,
		ScopeEventWrite,
		ScopeOrgRead,
		ScopeOrgWrite,
		ScopeTicketAdmin,
		ScopeUserRead,
		ScopeVenueWrite,
	}, scopes)
}

func TestResolveAdmin(t *testing.T) {
	scopes := Resolve([]Role{RoleAdmin})
	assert.Equal(t, []Scope{
		ScopeArtistWrite,
		ScopeEventInterest,
		ScopeEventWrite,
		ScopeOrderMakeExternalPayment,
		ScopeOrgAdmin,
		ScopeOrgRead,
		ScopeOrgWrite,
		ScopeRegionWrite,
		ScopeTicketAdmin,
		ScopeUserRead,
		ScopeVenueWrite,
	}, scopes)
}

func TestResolveDeduplicatesAcrossRoles(t *testing.T) {
	// Admin already inherits everything OrgOwner grants.
	assert.Equal(t, Resolve([]Role{RoleAdmin}), Resolve([]Role{RoleOrgOwner, RoleAdmin}))
}

func TestResolveOrderIndependent(t *testing.T) {
	roles := []Role{RoleUser, RoleOrgMember, RoleOrgOwner, RoleAdmin}
	want := Resolve(roles)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]Role(nil), roles...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Resolve(shuffled))
	}
}

func TestResolveUnknownRoleYieldsNoScopes(t *testing.T) {
	assert.Empty(t, Resolve([]Role{"SuperUser"}))
	// Unknown roles do not disturb known ones.
	assert.Equal(t, Resolve([]Role{RoleUser}), Resolve([]Role{RoleUser, "SuperUser"}))
}

func TestResolveEmpty(t *testing.T) {
	assert.Empty(t, Resolve(nil))
}

func TestContains(t *testing.T) {
	scopes := Resolve([]Role{RoleOrgMember})
	assert.True(t, Contains(scopes, ScopeTicketAdmin))
	assert.False(t, Contains(scopes, ScopeOrgWrite))
}
