package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

func onboardingRequest() OnboardingRequest {
	return OnboardingRequest{
		FirstName:        "Ivan",
		LastName:         "Dalton",
		Email:            "contact@skilyo.com",
		Password:         "StrongPwd123!",
		OrganizationName: "Skilyo Org",
	}
}

func TestOnboardingCreatesOwnerAndPublishesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Onboarding(ctx, onboardingRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.RoleCenterOwner.String(), resp.Owner.Role)
	assert.NotEmpty(t, resp.TenantID)
	assert.Equal(t, resp.TenantID, resp.Owner.TenantID)
	assert.Equal(t, "Skilyo Org", resp.OrganizationName)
	assert.False(t, resp.EmailVerified)
	assert.False(t, resp.Active)

	assert.Equal(t, 1, f.idp.count("create"))
	assert.Equal(t, "StrongPwd123!", f.idp.passwords["contact@skilyo.com"])
	require.Equal(t, []string{event.OrganizationRegistered}, f.pub.keys())

	registered := f.pub.events[0].(event.OrganizationRegisteredEvent)
	assert.Equal(t, resp.TenantID, registered.TenantID)
	assert.Equal(t, resp.Owner.ID, registered.OwnerID)

	stored, err := f.users.FindByEmail(ctx, "contact@skilyo.com")
	require.NoError(t, err)
	assert.Equal(t, "Ivan", stored.FirstName)
}

func TestOnboardingTwiceKeepsOneOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Onboarding(ctx, onboardingRequest())
	require.NoError(t, err)
	saves := f.store.Saves()

	second := onboardingRequest()
	second.OrganizationName = "Another Org"
	_, err = f.svc.Onboarding(ctx, second)
	assert.True(t, apperr.Is(err, apperr.KindAlreadyExists))

	assert.Equal(t, 1, f.idp.count("create"))
	assert.Equal(t, []string{event.OrganizationRegistered}, f.pub.keys())
	assert.Equal(t, saves, f.store.Saves())

	tenant, err := f.users.FindAllByTenantID(ctx, first.TenantID)
	require.NoError(t, err)
	require.Len(t, tenant, 1)
	assert.Equal(t, "contact@skilyo.com", tenant[0].Email.String())

	stored, err := f.users.FindByEmail(ctx, "contact@skilyo.com")
	require.NoError(t, err)
	assert.Equal(t, first.Owner.ID, stored.ID)
}

func TestOnboardingDuplicateEmailFailsBeforeSideEffects(t *testing.T) {
	f := newFixture(t)
	f.user(t, "contact@skilyo.com", entity.RoleStaffMember, "other", nil)
	saves := f.store.Saves()

	_, err := f.svc.Onboarding(context.Background(), onboardingRequest())
	assert.True(t, apperr.Is(err, apperr.KindAlreadyExists))
	assert.Zero(t, f.idp.count("create"))
	assert.Empty(t, f.pub.keys())
	assert.Equal(t, saves, f.store.Saves())
}

// commitFailingTx runs fn and then reports a failed commit.
type commitFailingTx struct{ err error }

func (c commitFailingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return c.err
}

func TestOnboardingCommitFailureAfterProviderIsDrift(t *testing.T) {
	f := newFixture(t)
	f.svc.Tx = commitFailingTx{err: errors.New("commit: connection reset")}

	_, err := f.svc.Onboarding(context.Background(), onboardingRequest())
	require.Error(t, err)
	assert.Equal(t, 1, f.idp.count("create"))
	assert.Empty(t, f.pub.keys())

	entry := f.logged.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "local store and identity provider diverged", entry.Message)
	assert.Equal(t, opOnboarding, entry.Data["op"])
}

func TestOnboardingProviderFailureIsNotDrift(t *testing.T) {
	f := newFixture(t)
	f.idp.createErr = apperr.New(apperr.KindIdentityProvider, "provider unavailable")

	_, err := f.svc.Onboarding(context.Background(), onboardingRequest())
	require.Error(t, err)
	for _, e := range f.logged.AllEntries() {
		assert.NotEqual(t, "local store and identity provider diverged", e.Message)
	}
}

func TestOnboardingRollsBackWhenProviderFails(t *testing.T) {
	f := newFixture(t)
	f.idp.createErr = apperr.New(apperr.KindIdentityProvider, "provider unavailable")
	ctx := context.Background()

	_, err := f.svc.Onboarding(ctx, onboardingRequest())
	assert.True(t, apperr.Is(err, apperr.KindIdentityProvider))

	exists, err := f.users.ExistsByEmail(ctx, "contact@skilyo.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, f.pub.keys())
}

func TestOnboardingSucceedsWhenPublishFails(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	_, err := f.svc.Onboarding(context.Background(), onboardingRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, f.idp.count("create"))
	assert.NotEmpty(t, f.logged.AllEntries())
}

func TestOnboardingValidation(t *testing.T) {
	f := newFixture(t)

	req := onboardingRequest()
	req.Email = "invalid-email"
	_, err := f.svc.Onboarding(context.Background(), req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req = onboardingRequest()
	req.OrganizationName = "  "
	_, err = f.svc.Onboarding(context.Background(), req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Zero(t, f.idp.count("create"))
}
