package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
	"github.com/oksasatya/tenant-identity/pkg/helpers"
)

const opProvisionUser = "provision_user"

// ProvisionUser creates a user inside the creator's tenant. The identity is
// created at the provider before the local save; a failed save leaves an
// orphaned provider identity, which is logged and counted as drift.
func (s *Service) ProvisionUser(ctx context.Context, creatorEmail string, req ProvisionUserRequest) (profile UserProfile, err error) {
	defer func() { s.record(opProvisionUser, err) }()

	creator, err := s.loadByEmail(ctx, creatorEmail)
	if err != nil {
		return UserProfile{}, err
	}
	role, err := entity.ParseUserRole(req.Role)
	if err != nil {
		return UserProfile{}, err
	}
	email, err := entity.NewEmail(req.Email)
	if err != nil {
		return UserProfile{}, err
	}

	if !creator.CanCreate(role) {
		return UserProfile{}, apperr.InsufficientPrivileges("requester role " + creator.Role.String() + " cannot create " + role.String())
	}
	unit, err := s.resolveProvisioningUnit(ctx, creator, req.UnitID)
	if err != nil {
		return UserProfile{}, err
	}
	if err := creator.ValidateCanCreate(role, unit); err != nil {
		return UserProfile{}, err
	}

	exists, err := s.Users.ExistsByEmail(ctx, email.String())
	if err != nil {
		return UserProfile{}, err
	}
	if exists {
		return UserProfile{}, apperr.AlreadyExists("user with email " + email.String() + " already exists")
	}

	var unitID *string
	if unit != nil {
		unitID = &unit.ID
	}
	user, err := entity.NewUser(entity.NewUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		TenantID:  creator.TenantID,
		UnitID:    unitID,
		Role:      role,
	})
	if err != nil {
		return UserProfile{}, err
	}
	// Provisioned accounts skip email verification and must rotate the
	// temporary credential on first login.
	user.Active = true
	user.EmailVerified = true
	user.MustChangePassword = true

	tempPassword, err := helpers.GenerateTemporaryPassword(s.TempPasswordLength)
	if err != nil {
		return UserProfile{}, apperr.Wrap(apperr.KindInternal, "generate temporary password", err)
	}

	if err := s.IDP.CreateIdentity(ctx, user, tempPassword); err != nil {
		return UserProfile{}, err
	}
	saved, err := s.Users.Save(ctx, user)
	if err != nil {
		s.drift(opProvisionUser, user, err)
		return UserProfile{}, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"op":         opProvisionUser,
			"user_id":    saved.ID,
			"tenant_id":  saved.TenantID,
			"role":       saved.Role.String(),
			"created_by": creator.ID,
		}).Info("user provisioned")
	}
	s.index(ctx, saved)
	s.publish(ctx, event.NewUserProvisioned(event.UserProvisionedEvent{
		UserID:            saved.ID,
		TenantID:          saved.TenantID,
		UnitID:            saved.UnitID,
		Email:             saved.Email.String(),
		FirstName:         saved.FirstName,
		LastName:          saved.LastName,
		Role:              saved.Role.String(),
		CreatedByEmail:    creator.Email.String(),
		TemporaryPassword: tempPassword,
	}))
	return ToProfile(saved), nil
}

// resolveProvisioningUnit loads the requested unit. A creator below
// CENTER_OWNER who names no unit provisions into their own.
func (s *Service) resolveProvisioningUnit(ctx context.Context, creator *entity.User, unitID *string) (*entity.Unit, error) {
	id := ""
	if unitID != nil {
		id = *unitID
	}
	if id == "" && creator.Role != entity.RoleCenterOwner && creator.UnitID != nil {
		id = *creator.UnitID
	}
	if id == "" {
		return nil, nil
	}
	if s.Units == nil {
		return nil, apperr.NotFound("unit " + id + " not found")
	}
	return s.Units.FindByID(ctx, id)
}
