package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRoleSource backs the gate with in-memory role assignments.
type fakeRoleSource struct {
	global map[uuid.UUID][]Role
	orgs   map[uuid.UUID]map[uuid.UUID][]Role // orgID -> userID -> roles
}

func (f *fakeRoleSource) GlobalRoles(_ context.Context, userID uuid.UUID) ([]Role, error) {
	return f.global[userID], nil
}

func (f *fakeRoleSource) OrganizationRoles(_ context.Context, orgID, userID uuid.UUID) ([]Role, error) {
	return f.orgs[orgID][userID], nil
}

func TestGateDeniesUserWithNoRoles(t *testing.T) {
	userID := uuid.New()
	gate := NewGate(&fakeRoleSource{global: map[uuid.UUID][]Role{}})

	ok, err := gate.HasScope(context.Background(), userID, ScopeEventWrite, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateDeniesAnonymous(t *testing.T) {
	gate := NewGate(&fakeRoleSource{})
	ok, err := gate.HasScope(context.Background(), uuid.Nil, ScopeEventWrite, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateGrantsGlobalAdmin(t *testing.T) {
	userID := uuid.New()
	gate := NewGate(&fakeRoleSource{
		global: map[uuid.UUID][]Role{userID: {RoleAdmin}},
	})

	ok, err := gate.HasScope(context.Background(), userID, ScopeOrgAdmin, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGateGrantsOrgOwnerWithinOrganization(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	gate := NewGate(&fakeRoleSource{
		global: map[uuid.UUID][]Role{userID: {RoleUser}},
		orgs:   map[uuid.UUID]map[uuid.UUID][]Role{orgID: {userID: {RoleOrgOwner}}},
	})

	ok, err := gate.HasScope(context.Background(), userID, ScopeEventWrite, &orgID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Membership does not leak into other organizations.
	otherOrg := uuid.New()
	ok, err = gate.HasScope(context.Background(), userID, ScopeEventWrite, &otherOrg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateDeniesWithoutOrganizationContext(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	gate := NewGate(&fakeRoleSource{
		global: map[uuid.UUID][]Role{userID: {RoleUser}},
		orgs:   map[uuid.UUID]map[uuid.UUID][]Role{orgID: {userID: {RoleOrgOwner}}},
	})

	// Same user, same scope, but the resource carries no organization.
	ok, err := gate.HasScope(context.Background(), userID, ScopeEventWrite, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanViewPrivateResource(t *testing.T) {
	member := uuid.New()
	admin := uuid.New()
	stranger := uuid.New()
	orgID := uuid.New()
	gate := NewGate(&fakeRoleSource{
		global: map[uuid.UUID][]Role{admin: {RoleAdmin}},
		orgs:   map[uuid.UUID]map[uuid.UUID][]Role{orgID: {member: {RoleOrgMember}}},
	})
	ctx := context.Background()

	// Public resources are visible to everyone, anonymous included.
	ok, err := gate.CanView(ctx, uuid.Nil, ScopeArtistWrite, false, &orgID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Private resources require org-scoped write scope; a global grant is
	// not enough.
	ok, err = gate.CanView(ctx, member, ScopeArtistWrite, true, &orgID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.CanView(ctx, admin, ScopeArtistWrite, true, &orgID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = gate.CanView(ctx, stranger, ScopeArtistWrite, true, &orgID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateUnknownRoleDeniesByDefault(t *testing.T) {
	userID := uuid.New()
	gate := NewGate(&fakeRoleSource{
		global: map[uuid.UUID][]Role{userID: {"Superuser"}},
	})
	ok, err := gate.HasScope(context.Background(), userID, ScopeEventWrite, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
