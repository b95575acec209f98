package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/services"
)

const (
	superAdminID = int64(1)
	adminID      = int64(2)
	workerID     = int64(3)
)

func newRegistry(t *testing.T) (*services.IdentityService, *memStateStore) {
	t.Helper()
	store := newMemStateStore()
	store.users = map[int64]domain.Identity{
		superAdminID: {ExternalID: superAdminID, DisplayName: "Root", Role: domain.RoleSuperAdmin, Allowed: true},
		adminID:      {ExternalID: adminID, DisplayName: "Armen", Role: domain.RoleAdmin, Allowed: true},
		workerID:     {ExternalID: workerID, DisplayName: "Ani", Role: domain.RoleWorker, Allowed: true},
	}
	svc, err := services.NewIdentityService(store, superAdminID, []int64{adminID})
	require.NoError(t, err)
	return svc, store
}

func TestAuthorizeCapabilityMatrix(t *testing.T) {
	svc, _ := newRegistry(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, superAdminID, domain.CapManageRoles))
	assert.NoError(t, svc.Authorize(ctx, adminID, domain.CapManagePayments))
	assert.NoError(t, svc.Authorize(ctx, workerID, domain.CapManageRecords))

	err := svc.Authorize(ctx, workerID, domain.CapManagePayments)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = svc.Authorize(ctx, adminID, domain.CapManageRoles)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = svc.Authorize(ctx, 999, domain.CapManageRecords)
	assert.ErrorIs(t, err, apperrors.ErrUnknownIdentity)
}

func TestAuthorizeRequiresAllowedFlag(t *testing.T) {
	svc, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, 50, "Karen"))
	err := svc.Authorize(ctx, 50, domain.CapManageRecords)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRegisterIsIdempotent(t *testing.T) {
	svc, store := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, 50, "Karen"))
	saves := store.saveUsersCalls
	require.NoError(t, svc.Register(ctx, 50, "Karen Again"))
	assert.Equal(t, saves, store.saveUsersCalls)

	ident, err := svc.Identity(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, "Karen", ident.DisplayName)
	assert.Equal(t, domain.RoleWorker, ident.Role)
	assert.False(t, ident.Allowed)
}

func TestRoleMonotonicity(t *testing.T) {
	svc, _ := newRegistry(t)
	ctx := context.Background()

	// Only the super admin can change roles; a denied attempt leaves state
	// untouched.
	err := svc.SetRole(ctx, adminID, workerID, domain.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	ident, err := svc.Identity(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWorker, ident.Role)

	require.NoError(t, svc.SetRole(ctx, superAdminID, workerID, domain.RoleSecondary))
	ident, err = svc.Identity(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSecondary, ident.Role)
}

func TestSetRoleNeverCreatesSecondSuperAdmin(t *testing.T) {
	svc, _ := newRegistry(t)
	ctx := context.Background()

	// Even the super admin cannot hand the role out.
	err := svc.SetRole(ctx, superAdminID, workerID, domain.RoleSuperAdmin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	ident, err := svc.Identity(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWorker, ident.Role)

	// The worker therefore stays subject to the allowed-set controls.
	require.NoError(t, svc.Disallow(ctx, superAdminID, workerID))
	err = svc.Authorize(ctx, workerID, domain.CapManageRecords)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	svc, _ := newRegistry(t)
	ctx := context.Background()

	err := svc.SetRole(ctx, superAdminID, workerID, domain.Role("JANITOR"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	ident, err := svc.Identity(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWorker, ident.Role)
}

func TestDisallow(t *testing.T) {
	svc, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.Disallow(ctx, superAdminID, workerID))
	err := svc.Authorize(ctx, workerID, domain.CapManageRecords)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, svc.Allow(ctx, superAdminID, workerID))
	assert.NoError(t, svc.Authorize(ctx, workerID, domain.CapManageRecords))

	// The super admin cannot lock themselves out.
	err = svc.Disallow(ctx, superAdminID, superAdminID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestReportsLinkage(t *testing.T) {
	svc, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.AddReport(ctx, workerID, "cb-0a1b2c3d"))
	require.NoError(t, svc.AddReport(ctx, workerID, "cb-0a1b2c3d")) // duplicate ignored
	require.NoError(t, svc.AddReport(ctx, workerID, "cb-11223344"))

	ident, err := svc.Identity(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cb-0a1b2c3d", "cb-11223344"}, ident.Reports)

	require.NoError(t, svc.RemoveReport(ctx, workerID, "cb-0a1b2c3d"))
	ident, err = svc.Identity(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cb-11223344"}, ident.Reports)
}

func TestResolveByDisplayName(t *testing.T) {
	svc, _ := newRegistry(t)
	ctx := context.Background()

	role, ok := svc.ResolveRoleByDisplayName(ctx, "Ani")
	require.True(t, ok)
	assert.Equal(t, domain.RoleWorker, role)

	_, ok = svc.ResolveRoleByDisplayName(ctx, "Nobody")
	assert.False(t, ok)

	ident, ok := svc.IdentityByDisplayName(ctx, "Armen")
	require.True(t, ok)
	assert.Equal(t, adminID, ident.ExternalID)
}

func TestMigrateRoles(t *testing.T) {
	store := newMemStateStore()
	store.users = map[int64]domain.Identity{
		superAdminID: {ExternalID: superAdminID, DisplayName: "Root"},
		adminID:      {ExternalID: adminID, DisplayName: "Armen"},
		workerID:     {ExternalID: workerID, DisplayName: "Ani"},
	}
	store.allowed = []int64{workerID}

	svc, err := services.NewIdentityService(store, superAdminID, []int64{adminID})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.MigrateRoles(ctx))

	root, err := svc.Identity(ctx, superAdminID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, root.Role)
	assert.True(t, root.Allowed)

	armen, err := svc.Identity(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, armen.Role)
	assert.True(t, armen.Allowed)

	ani, err := svc.Identity(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWorker, ani.Role)
	assert.True(t, ani.Allowed)

	// The allowed file now reflects the merged state.
	allowed, err := store.LoadAllowed()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{superAdminID, adminID, workerID}, allowed)
}
