package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// User is the aggregate root for the identity domain. It is scoped to one
// tenant and optionally one unit inside it. Credentials live at the identity
// provider, never here.
type User struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              Email
	TenantID           string
	UnitID             *string
	Role               UserRole
	EmailVerified      bool
	Active             bool
	MustChangePassword bool
	AvatarURL          string
	// Version is the optimistic-concurrency token; 0 means never persisted.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type NewUserParams struct {
	ID        string
	FirstName string
	LastName  string
	Email     Email
	TenantID  string
	UnitID    *string
	Role      UserRole
}

// NewUser builds an inactive, unverified user. An id is generated when absent.
func NewUser(p NewUserParams) (*User, error) {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return nil, apperr.Validation("first name and last name are required")
	}
	if p.Email.IsZero() {
		return nil, apperr.Validation("email is required")
	}
	if strings.TrimSpace(p.TenantID) == "" {
		return nil, apperr.Validation("tenant id is required")
	}
	if !p.Role.IsValid() {
		return nil, apperr.Validation("invalid role")
	}
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return &User{
		ID:        id,
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Email:     p.Email,
		TenantID:  p.TenantID,
		UnitID:    normalizeUnit(p.UnitID),
		Role:      p.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanCreate is true iff the user's role strictly outranks targetRole.
func (u *User) CanCreate(targetRole UserRole) bool {
	return u.Role.CanCreate(targetRole)
}

// CheckCanManage fails unless the user strictly outranks target. Tenant and
// unit scope are checked separately by CheckScope.
func (u *User) CheckCanManage(target *User) error {
	if !u.Role.IsHigherThan(target.Role) {
		return apperr.InsufficientPrivileges("requester role " + u.Role.String() + " cannot manage " + target.Role.String())
	}
	return nil
}

// ValidateCanCreate checks that a user of targetRole may be created by u inside
// unit (nil for tenant level). Unit managers may only create inside their own unit.
func (u *User) ValidateCanCreate(targetRole UserRole, unit *Unit) error {
	if !targetRole.IsValid() {
		return apperr.Validation("invalid role")
	}
	if !u.CanCreate(targetRole) {
		return apperr.InsufficientPrivileges("requester role " + u.Role.String() + " cannot create " + targetRole.String())
	}
	if unit != nil && unit.TenantID != u.TenantID {
		return apperr.ScopeViolation("unit does not belong to requester tenant")
	}
	if u.Role == RoleUnitManager {
		if unit == nil || u.UnitID == nil || unit.ID != *u.UnitID {
			return apperr.ScopeViolation("unit manager may only create users in their own unit")
		}
	}
	return nil
}

func (u *User) IsSelf(other *User) bool {
	return other != nil && u.ID == other.ID
}

func (u *User) SameTenant(other *User) bool {
	return other != nil && u.TenantID == other.TenantID
}

func (u *User) SameUnit(other *User) bool {
	return other != nil && u.UnitID != nil && other.UnitID != nil && *u.UnitID == *other.UnitID
}

// CheckScope fails with ScopeViolation when target lies outside the tenant, or
// outside the unit for a unit manager.
func (u *User) CheckScope(target *User) error {
	if !u.SameTenant(target) {
		return apperr.ScopeViolation("target belongs to another tenant")
	}
	if u.Role == RoleUnitManager && !u.IsSelf(target) && !u.SameUnit(target) {
		return apperr.ScopeViolation("target belongs to another unit")
	}
	return nil
}

// CanSee reports whether target is visible in u's directory.
func (u *User) CanSee(target *User) bool {
	if u.IsSelf(target) {
		return true
	}
	if !u.SameTenant(target) {
		return false
	}
	switch u.Role {
	case RoleCenterOwner:
		return true
	case RoleUnitManager:
		return u.SameUnit(target)
	default:
		return false
	}
}

// SyncValidationStatus mirrors the provider's verification flag. Verification is
// the only local activation trigger. Idempotent.
func (u *User) SyncValidationStatus(emailVerifiedFromProvider bool) {
	u.EmailVerified = emailVerifiedFromProvider
	if emailVerifiedFromProvider {
		u.Active = true
	}
}

func (u *User) UpdatePasswordRequirement(mustChange bool) {
	u.MustChangePassword = mustChange
}

func (u *User) Activate() { u.Active = true }

func (u *User) Deactivate() { u.Active = false }

// UpdateProfile replaces the display fields; callers merge absent values first.
func (u *User) UpdateProfile(firstName, lastName string) error {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return apperr.Validation("first name and last name must not be blank")
	}
	u.FirstName = firstName
	u.LastName = lastName
	return nil
}

// ChangeRole sets a new role. Whether byUserID is allowed to do so is decided
// by the caller; a user can never change their own role.
func (u *User) ChangeRole(newRole UserRole, byUserID string) error {
	if !newRole.IsValid() {
		return apperr.Validation("invalid role")
	}
	if byUserID == "" || byUserID == u.ID {
		return apperr.InsufficientPrivileges("a user cannot change their own role")
	}
	u.Role = newRole
	return nil
}

func (u *User) AssignToUnit(unitID *string) {
	u.UnitID = normalizeUnit(unitID)
}

func (u *User) SetAvatar(url string) {
	u.AvatarURL = url
}

func normalizeUnit(unitID *string) *string {
	if unitID == nil || strings.TrimSpace(*unitID) == "" {
		return nil
	}
	v := strings.TrimSpace(*unitID)
	return &v
}
