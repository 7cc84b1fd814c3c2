package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const opUpdateUser = "update_user"

// UpdateUser applies a partial update to target. Every authorization check runs
// before the first mutation; nothing is saved when any check fails.
func (s *Service) UpdateUser(ctx context.Context, req UpdateUserRequest) (err error) {
	defer func() { s.record(opUpdateUser, err) }()

	if !req.hasProfileFields() && !req.hasAdminFields() {
		return apperr.Validation("no fields to update")
	}
	requester, err := s.loadByEmail(ctx, req.RequesterEmail)
	if err != nil {
		return err
	}
	target, err := s.Users.FindByID(ctx, req.TargetID)
	if err != nil {
		return err
	}

	if err := requester.CheckScope(target); err != nil {
		return err
	}
	if !canEditProfile(requester, target) {
		return apperr.InsufficientPrivileges("requester cannot edit this user")
	}
	if req.hasAdminFields() && !canEditAdminFields(requester, target) {
		return apperr.InsufficientPrivileges("only the tenant owner may change role or unit of another user")
	}

	var newRole *entity.UserRole
	if req.Role != nil {
		role, err := entity.ParseUserRole(*req.Role)
		if err != nil {
			return err
		}
		if !requester.CanCreate(role) {
			return apperr.InsufficientPrivileges("cannot assign role " + role.String())
		}
		newRole = &role
	}
	var newUnit *string
	if req.UnitID != nil && *req.UnitID != "" {
		unit, err := s.Units.FindByID(ctx, *req.UnitID)
		if err != nil {
			return err
		}
		if unit.TenantID != requester.TenantID {
			return apperr.ScopeViolation("unit does not belong to requester tenant")
		}
		newUnit = &unit.ID
	}

	if req.hasProfileFields() {
		first, last := target.FirstName, target.LastName
		if req.FirstName != nil {
			first = *req.FirstName
		}
		if req.LastName != nil {
			last = *req.LastName
		}
		if err := target.UpdateProfile(first, last); err != nil {
			return err
		}
	}
	if newRole != nil {
		if err := target.ChangeRole(*newRole, requester.ID); err != nil {
			return err
		}
	}
	if req.UnitID != nil {
		// an empty unit id detaches the user from its unit
		target.AssignToUnit(newUnit)
	}

	if req.hasAdminFields() {
		if err := s.IDP.UpdateUserRole(ctx, target.Email.String(), target.Role.String()); err != nil {
			return err
		}
	}

	saved, err := s.Users.Save(ctx, target)
	if err != nil {
		if req.hasAdminFields() {
			s.drift(opUpdateUser, target, err)
		}
		return err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"op":           opUpdateUser,
			"user_id":      saved.ID,
			"requested_by": requester.ID,
		}).Info("user updated")
	}
	s.index(ctx, saved)
	return nil
}
