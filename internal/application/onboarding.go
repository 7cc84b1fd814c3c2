package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const opOnboarding = "onboarding"

// Onboarding creates a tenant and its CENTER_OWNER. The local save and the
// provider identity share one transaction: if the provider call fails the
// owner row is rolled back and no event is published.
func (s *Service) Onboarding(ctx context.Context, req OnboardingRequest) (resp OnboardingResponse, err error) {
	defer func() { s.record(opOnboarding, err) }()

	if strings.TrimSpace(req.Password) == "" {
		return OnboardingResponse{}, apperr.Validation("password is required")
	}
	email, err := entity.NewEmail(req.Email)
	if err != nil {
		return OnboardingResponse{}, err
	}
	owner, err := entity.NewUser(entity.NewUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		TenantID:  uuid.NewString(),
		Role:      entity.RoleCenterOwner,
	})
	if err != nil {
		return OnboardingResponse{}, err
	}

	registered, err := s.Policy.InitiateOnboarding(ctx, owner, req.OrganizationName)
	if err != nil {
		return OnboardingResponse{}, err
	}

	var (
		saved           *entity.User
		identityCreated bool
	)
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.Users.Save(ctx, owner)
		if err != nil {
			return err
		}
		if err := s.IDP.CreateIdentity(ctx, saved, req.Password); err != nil {
			return err
		}
		identityCreated = true
		return nil
	})
	if err != nil {
		// the commit failed after the provider accepted the identity
		if identityCreated {
			s.drift(opOnboarding, owner, err)
		}
		return OnboardingResponse{}, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"op":        opOnboarding,
			"tenant_id": saved.TenantID,
			"owner_id":  saved.ID,
		}).Info("organization registered")
	}
	s.index(ctx, saved)
	s.publish(ctx, registered)

	return OnboardingResponse{
		Owner:            ToProfile(saved),
		TenantID:         saved.TenantID,
		OrganizationName: registered.OrganizationName,
		EmailVerified:    saved.EmailVerified,
		Active:           saved.Active,
	}, nil
}
