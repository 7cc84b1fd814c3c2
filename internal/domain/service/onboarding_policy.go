package service

import (
	"context"
	"strings"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/internal/domain/repository"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// OnboardingPolicy guards organization creation. The duplicate-email check is
// a domain rule evaluated before any external side effect, independent of the
// store's unique constraint.
type OnboardingPolicy struct {
	Users repository.UserRepository
}

func NewOnboardingPolicy(users repository.UserRepository) *OnboardingPolicy {
	return &OnboardingPolicy{Users: users}
}

// InitiateOnboarding fails with AlreadyExists when the owner's email is taken
// and otherwise returns the registration event for the new tenant.
func (p *OnboardingPolicy) InitiateOnboarding(ctx context.Context, owner *entity.User, organizationName string) (event.OrganizationRegisteredEvent, error) {
	organizationName = strings.TrimSpace(organizationName)
	if organizationName == "" {
		return event.OrganizationRegisteredEvent{}, apperr.Validation("organization name is required")
	}
	if owner.Role != entity.RoleCenterOwner {
		return event.OrganizationRegisteredEvent{}, apperr.Validation("organization owner must be " + entity.RoleCenterOwner.String())
	}
	exists, err := p.Users.ExistsByEmail(ctx, owner.Email.String())
	if err != nil {
		return event.OrganizationRegisteredEvent{}, err
	}
	if exists {
		return event.OrganizationRegisteredEvent{}, apperr.AlreadyExists("user with email " + owner.Email.String() + " already exists")
	}
	return event.NewOrganizationRegistered(
		owner.TenantID,
		owner.ID,
		owner.Email.String(),
		owner.FirstName,
		owner.LastName,
		organizationName,
	), nil
}
