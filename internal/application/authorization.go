package application

import (
	"github.com/oksasatya/tenant-identity/internal/domain/entity"
)

// The two UpdateUser permissions are kept as separate predicates so the
// privilege matrix can be read and tested on its own.

// canEditProfile: self-service, or a strictly higher role.
func canEditProfile(requester, target *entity.User) bool {
	return requester.IsSelf(target) || requester.Role.IsHigherThan(target.Role)
}

// canEditAdminFields: role and unit belong to the tenant owner, never to the
// target themself.
func canEditAdminFields(requester, target *entity.User) bool {
	return requester.Role == entity.RoleCenterOwner && !requester.IsSelf(target)
}
