package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

func TestUpdateUserPrivilegeMatrix(t *testing.T) {
	owner := &entity.User{ID: "o", TenantID: "t1", Role: entity.RoleCenterOwner}
	manager := &entity.User{ID: "m", TenantID: "t1", Role: entity.RoleUnitManager}
	staff := &entity.User{ID: "s", TenantID: "t1", Role: entity.RoleStaffMember}

	tests := []struct {
		name             string
		requester, target *entity.User
		profile, admin   bool
	}{
		{"owner edits staff", owner, staff, true, true},
		{"owner edits self", owner, owner, true, false},
		{"manager edits staff", manager, staff, true, false},
		{"manager edits self", manager, manager, true, false},
		{"staff edits self", staff, staff, true, false},
		{"staff edits manager", staff, manager, false, false},
		{"manager edits owner", manager, owner, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.profile, canEditProfile(tt.requester, tt.target))
			assert.Equal(t, tt.admin, canEditAdminFields(tt.requester, tt.target))
		})
	}
}

func TestUpdateUserOwnerChangesRoleAndUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit := f.unit(t, "t1", "North")
	f.user(t, "owner@skilyo.com", entity.RoleCenterOwner, "t1", nil)
	staff := f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", nil)

	err := f.svc.UpdateUser(ctx, UpdateUserRequest{
		TargetID:       staff.ID,
		RequesterEmail: "owner@skilyo.com",
		Role:           strPtr("UNIT_MANAGER"),
		UnitID:         &unit.ID,
	})
	require.NoError(t, err)

	stored, err := f.users.FindByID(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUnitManager, stored.Role)
	require.NotNil(t, stored.UnitID)
	assert.Equal(t, unit.ID, *stored.UnitID)
	assert.Equal(t, "UNIT_MANAGER", f.idp.roles["staff@skilyo.com"])
}

func TestUpdateUserRejectionsNeverSave(t *testing.T) {
	f := newFixture(t)
	unit := f.unit(t, "t1", "North")
	owner := f.user(t, "owner@skilyo.com", entity.RoleCenterOwner, "t1", nil)
	manager := f.user(t, "manager@skilyo.com", entity.RoleUnitManager, "t1", unit)
	staff := f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", unit)
	foreign := f.user(t, "foreign@skilyo.com", entity.RoleStaffMember, "t2", nil)
	saves := f.store.Saves()

	tests := []struct {
		name string
		req  UpdateUserRequest
		kind apperr.Kind
	}{
		{"staff edits manager", UpdateUserRequest{TargetID: manager.ID, RequesterEmail: "staff@skilyo.com", FirstName: strPtr("X")}, apperr.KindInsufficientPrivileges},
		{"manager changes staff role", UpdateUserRequest{TargetID: staff.ID, RequesterEmail: "manager@skilyo.com", Role: strPtr("CANDIDATE")}, apperr.KindInsufficientPrivileges},
		{"owner changes own role", UpdateUserRequest{TargetID: owner.ID, RequesterEmail: "owner@skilyo.com", Role: strPtr("UNIT_MANAGER")}, apperr.KindInsufficientPrivileges},
		{"owner promotes to owner", UpdateUserRequest{TargetID: staff.ID, RequesterEmail: "owner@skilyo.com", Role: strPtr("CENTER_OWNER")}, apperr.KindInsufficientPrivileges},
		{"owner edits other tenant", UpdateUserRequest{TargetID: foreign.ID, RequesterEmail: "owner@skilyo.com", FirstName: strPtr("X")}, apperr.KindScopeViolation},
		{"unknown unit", UpdateUserRequest{TargetID: staff.ID, RequesterEmail: "owner@skilyo.com", UnitID: strPtr("missing")}, apperr.KindNotFound},
		{"blank name", UpdateUserRequest{TargetID: staff.ID, RequesterEmail: "owner@skilyo.com", FirstName: strPtr(" ")}, apperr.KindValidation},
		{"nothing to update", UpdateUserRequest{TargetID: staff.ID, RequesterEmail: "owner@skilyo.com"}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.UpdateUser(context.Background(), tt.req)
			assert.Equal(t, tt.kind, apperr.GetKind(err))
		})
	}
	assert.Equal(t, saves, f.store.Saves())
	assert.Zero(t, f.idp.count("role"))
}

func TestUpdateUserSelfProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", nil)

	err := f.svc.UpdateUser(ctx, UpdateUserRequest{
		TargetID:       staff.ID,
		RequesterEmail: "staff@skilyo.com",
		FirstName:      strPtr("Samantha"),
	})
	require.NoError(t, err)

	stored, err := f.users.FindByID(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, "Samantha", stored.FirstName)
	assert.Equal(t, staff.LastName, stored.LastName)
	assert.Zero(t, f.idp.count("role"))
}

func TestUpdateUserProviderFailureSkipsSave(t *testing.T) {
	f := newFixture(t)
	f.user(t, "owner@skilyo.com", entity.RoleCenterOwner, "t1", nil)
	staff := f.user(t, "staff@skilyo.com", entity.RoleStaffMember, "t1", nil)
	f.idp.roleErr = apperr.New(apperr.KindIdentityProvider, "role sync failed")
	saves := f.store.Saves()

	err := f.svc.UpdateUser(context.Background(), UpdateUserRequest{
		TargetID:       staff.ID,
		RequesterEmail: "owner@skilyo.com",
		Role:           strPtr("CANDIDATE"),
	})
	assert.True(t, apperr.Is(err, apperr.KindIdentityProvider))
	assert.Equal(t, saves, f.store.Saves())
}
