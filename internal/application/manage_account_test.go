package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

func TestBanUserByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner@skilyo.com", entity.RoleCenterOwner, "t1", nil)
	staff := f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", nil)

	require.NoError(t, f.svc.BanUser(ctx, "staff@skilyo.com", "owner@skilyo.com"))

	stored, err := f.users.FindByID(ctx, staff.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, 1, f.idp.count("disable"))
	require.Equal(t, []string{event.AccountBanned}, f.pub.keys())
	assert.Equal(t, "owner@skilyo.com", f.pub.events[0].(event.AccountBannedEvent).BannedByEmail)
}

func TestBanUserRequiresHigherRole(t *testing.T) {
	f := newFixture(t)
	unit := f.unit(t, "t1", "North")
	f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", unit)
	f.user(t, "manager@skilyo.com", entity.RoleUnitManager, "t1", unit)
	saves := f.store.Saves()

	err := f.svc.BanUser(context.Background(), "manager@skilyo.com", "staff@skilyo.com")
	assert.True(t, apperr.Is(err, apperr.KindInsufficientPrivileges))
	assert.Zero(t, f.idp.count("disable"))
	assert.Empty(t, f.pub.keys())
	assert.Equal(t, saves, f.store.Saves())
}

func TestBanUserAcrossTenantsIsScopeViolation(t *testing.T) {
	f := newFixture(t)
	f.user(t, "owner@skilyo.com", entity.RoleCenterOwner, "t1", nil)
	f.user(t, "foreign@skilyo.com", entity.RoleStaffMember, "t2", nil)

	err := f.svc.BanUser(context.Background(), "foreign@skilyo.com", "owner@skilyo.com")
	assert.True(t, apperr.Is(err, apperr.KindScopeViolation))
	assert.Zero(t, f.idp.count("disable"))
}

func TestManagerCannotBanOutsideUnit(t *testing.T) {
	f := newFixture(t)
	north := f.unit(t, "t1", "North")
	south := f.unit(t, "t1", "South")
	f.user(t, "manager@skilyo.com", entity.RoleUnitManager, "t1", north)
	f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", south)

	err := f.svc.BanUser(context.Background(), "staff@skilyo.com", "manager@skilyo.com")
	assert.True(t, apperr.Is(err, apperr.KindScopeViolation))
}

func TestBanUserProviderFailureQueuesRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner@skilyo.com", entity.RoleCenterOwner, "t1", nil)
	staff := f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", nil)
	f.idp.disableErr = apperr.New(apperr.KindIdentityProvider, "provider timeout")

	err := f.svc.BanUser(ctx, "staff@skilyo.com", "owner@skilyo.com")
	assert.True(t, apperr.Is(err, apperr.KindIdentityProvider))

	stored, err := f.users.FindByID(ctx, staff.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active, "local state is kept as the source of truth")
	assert.Empty(t, f.pub.keys())

	enabled, queued := f.queue.enqueued["staff@skilyo.com"]
	assert.True(t, queued)
	assert.False(t, enabled)
}

func TestActivateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner@skilyo.com", entity.RoleCenterOwner, "t1", nil)
	staff := f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", nil)
	require.NoError(t, f.svc.BanUser(ctx, "staff@skilyo.com", "owner@skilyo.com"))

	require.NoError(t, f.svc.ActivateUser(ctx, "staff@skilyo.com", "owner@skilyo.com"))

	stored, err := f.users.FindByID(ctx, staff.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.Equal(t, 1, f.idp.count("enable"))
	assert.Equal(t, []string{event.AccountBanned, event.AccountActivated}, f.pub.keys())
}

func TestSyncAccountStatePushesLocalState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", nil)

	require.NoError(t, f.svc.SyncAccountState(ctx, "staff@skilyo.com"))
	assert.Equal(t, 1, f.idp.count("enable"))

	staff.Deactivate()
	_, err := f.users.Save(ctx, staff)
	require.NoError(t, err)
	require.NoError(t, f.svc.SyncAccountState(ctx, "staff@skilyo.com"))
	assert.Equal(t, 1, f.idp.count("disable"))
}
