package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

func strPtr(s string) *string { return &s }

func newTestUser(t *testing.T, role UserRole, tenant string, unit *string) *User {
	t.Helper()
	u, err := NewUser(NewUserParams{
		FirstName: "Ivan",
		LastName:  "Dalton",
		Email:     MustEmail(string(role) + "@skilyo.com"),
		TenantID:  tenant,
		UnitID:    unit,
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func TestCanCreateMatchesWeights(t *testing.T) {
	for _, r1 := range Roles() {
		for _, r2 := range Roles() {
			assert.Equal(t, r1.Weight() > r2.Weight(), r1.CanCreate(r2), "%s -> %s", r1, r2)
		}
	}
	assert.False(t, RoleCenterOwner.CanCreate(RoleCenterOwner))
	assert.True(t, RoleCenterOwner.CanCreate(RoleCandidate))
	assert.False(t, RoleCandidate.CanCreate(RoleStaffMember))
	assert.False(t, UserRole("ROOT").CanCreate(RoleCandidate))
}

func TestParseUserRole(t *testing.T) {
	r, err := ParseUserRole(" unit_manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleUnitManager, r)

	_, err = ParseUserRole("ADMIN")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestEmailValidation(t *testing.T) {
	valid := []string{"contact@skilyo.com", "First.Last+tag@sub.example.org", "a@b.io"}
	for _, v := range valid {
		e, err := NewEmail(v)
		require.NoError(t, err, v)
		assert.False(t, e.IsZero())
	}

	invalid := []string{"invalid-email", "a@.com", "", "a@b", "@skilyo.com", "a@-x.com", "a b@c.com"}
	for _, v := range invalid {
		_, err := NewEmail(v)
		assert.True(t, apperr.Is(err, apperr.KindValidation), v)
	}

	e, err := NewEmail("  Contact@Skilyo.COM ")
	require.NoError(t, err)
	assert.Equal(t, "contact@skilyo.com", e.String())
}

func TestNewUserGeneratesID(t *testing.T) {
	u := newTestUser(t, RoleStaffMember, "t1", strPtr(" "))
	assert.NotEmpty(t, u.ID)
	assert.Nil(t, u.UnitID)
	assert.False(t, u.Active)
	assert.False(t, u.EmailVerified)
	assert.Zero(t, u.Version)

	_, err := NewUser(NewUserParams{FirstName: "a", LastName: "", Email: MustEmail("a@b.io"), TenantID: "t", Role: RoleCandidate})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCheckCanManage(t *testing.T) {
	staff := newTestUser(t, RoleStaffMember, "t1", strPtr("u1"))
	manager := newTestUser(t, RoleUnitManager, "t1", strPtr("u1"))

	err := staff.CheckCanManage(manager)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientPrivileges))
	assert.NoError(t, manager.CheckCanManage(staff))
	assert.Error(t, manager.CheckCanManage(manager))
}

func TestCheckScope(t *testing.T) {
	owner := newTestUser(t, RoleCenterOwner, "t1", nil)
	manager := newTestUser(t, RoleUnitManager, "t1", strPtr("u1"))
	inUnit := newTestUser(t, RoleStaffMember, "t1", strPtr("u1"))
	otherUnit := newTestUser(t, RoleStaffMember, "t1", strPtr("u2"))
	otherTenant := newTestUser(t, RoleStaffMember, "t2", strPtr("u1"))

	assert.NoError(t, owner.CheckScope(otherUnit))
	assert.NoError(t, manager.CheckScope(inUnit))
	assert.True(t, apperr.Is(manager.CheckScope(otherUnit), apperr.KindScopeViolation))
	assert.True(t, apperr.Is(owner.CheckScope(otherTenant), apperr.KindScopeViolation))
}

func TestValidateCanCreate(t *testing.T) {
	owner := newTestUser(t, RoleCenterOwner, "t1", nil)
	manager := newTestUser(t, RoleUnitManager, "t1", strPtr("u1"))
	staff := newTestUser(t, RoleStaffMember, "t1", strPtr("u1"))

	unit1 := &Unit{ID: "u1", TenantID: "t1"}
	unit2 := &Unit{ID: "u2", TenantID: "t1"}
	foreign := &Unit{ID: "u9", TenantID: "t2"}

	assert.NoError(t, owner.ValidateCanCreate(RoleUnitManager, unit2))
	assert.NoError(t, owner.ValidateCanCreate(RoleStaffMember, nil))
	assert.True(t, apperr.Is(owner.ValidateCanCreate(RoleCenterOwner, nil), apperr.KindInsufficientPrivileges))
	assert.True(t, apperr.Is(owner.ValidateCanCreate(RoleStaffMember, foreign), apperr.KindScopeViolation))

	assert.NoError(t, manager.ValidateCanCreate(RoleCandidate, unit1))
	assert.True(t, apperr.Is(manager.ValidateCanCreate(RoleCandidate, unit2), apperr.KindScopeViolation))
	assert.True(t, apperr.Is(manager.ValidateCanCreate(RoleUnitManager, unit1), apperr.KindInsufficientPrivileges))

	assert.True(t, apperr.Is(staff.ValidateCanCreate(RoleStaffMember, unit1), apperr.KindInsufficientPrivileges))
}

func TestSyncValidationStatus(t *testing.T) {
	u := newTestUser(t, RoleCenterOwner, "t1", nil)

	u.SyncValidationStatus(false)
	assert.False(t, u.EmailVerified)
	assert.False(t, u.Active)

	u.SyncValidationStatus(true)
	u.SyncValidationStatus(true)
	assert.True(t, u.EmailVerified)
	assert.True(t, u.Active)
}

func TestChangeRoleNeverBySelf(t *testing.T) {
	u := newTestUser(t, RoleStaffMember, "t1", nil)

	assert.True(t, apperr.Is(u.ChangeRole(RoleUnitManager, u.ID), apperr.KindInsufficientPrivileges))
	assert.NoError(t, u.ChangeRole(RoleUnitManager, "someone-else"))
	assert.Equal(t, RoleUnitManager, u.Role)
}

func TestCanSee(t *testing.T) {
	owner := newTestUser(t, RoleCenterOwner, "t1", nil)
	manager := newTestUser(t, RoleUnitManager, "t1", strPtr("u1"))
	peer := newTestUser(t, RoleStaffMember, "t1", strPtr("u1"))
	other := newTestUser(t, RoleStaffMember, "t1", strPtr("u2"))

	assert.True(t, owner.CanSee(other))
	assert.True(t, manager.CanSee(peer))
	assert.False(t, manager.CanSee(other))
	assert.False(t, peer.CanSee(manager))
	assert.True(t, peer.CanSee(peer))
}
