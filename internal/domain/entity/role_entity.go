package entity

import (
	"encoding/json"
	"strings"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// UserRole is one of a closed set of roles, totally ordered by Weight.
type UserRole string

const (
	RoleCenterOwner UserRole = "CENTER_OWNER"
	RoleUnitManager UserRole = "UNIT_MANAGER"
	RoleStaffMember UserRole = "STAFF_MEMBER"
	RoleCandidate   UserRole = "CANDIDATE"
)

// roleWeights is the explicit rank table; hierarchy checks never depend on
// declaration order.
var roleWeights = map[UserRole]int{
	RoleCenterOwner: 400,
	RoleUnitManager: 300,
	RoleStaffMember: 200,
	RoleCandidate:   100,
}

// Roles lists every role from highest to lowest weight.
func Roles() []UserRole {
	return []UserRole{RoleCenterOwner, RoleUnitManager, RoleStaffMember, RoleCandidate}
}

// ParseUserRole accepts role names case-insensitively.
func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleWeights[r]; !ok {
		return "", apperr.Validation("unknown role " + s)
	}
	return r, nil
}

// Weight returns the rank of the role, 0 for an unknown value.
func (r UserRole) Weight() int {
	return roleWeights[r]
}

func (r UserRole) IsValid() bool {
	_, ok := roleWeights[r]
	return ok
}

// IsHigherThan reports a strict hierarchy relation.
func (r UserRole) IsHigherThan(other UserRole) bool {
	return r.Weight() > other.Weight()
}

// CanCreate is true iff r strictly outranks target.
func (r UserRole) CanCreate(target UserRole) bool {
	return r.IsValid() && target.IsValid() && r.IsHigherThan(target)
}

func (r UserRole) String() string {
	return string(r)
}

func (r *UserRole) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseUserRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
