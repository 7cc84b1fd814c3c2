package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
)

const (
	opBanUser      = "ban_user"
	opActivateUser = "activate_user"
)

// BanUser deactivates target locally, then disables it at the provider.
func (s *Service) BanUser(ctx context.Context, targetEmail, requesterEmail string) (err error) {
	defer func() { s.record(opBanUser, err) }()
	return s.changeAccountState(ctx, opBanUser, targetEmail, requesterEmail, false)
}

// ActivateUser reactivates target locally, then enables it at the provider.
func (s *Service) ActivateUser(ctx context.Context, targetEmail, requesterEmail string) (err error) {
	defer func() { s.record(opActivateUser, err) }()
	return s.changeAccountState(ctx, opActivateUser, targetEmail, requesterEmail, true)
}

// changeAccountState checks scope then privilege before any side effect. The
// local save and the provider call are not atomic: when the provider fails
// after the save, the error is returned and a retry is queued so the provider
// converges on the local state.
func (s *Service) changeAccountState(ctx context.Context, op, targetEmail, requesterEmail string, enable bool) error {
	target, err := s.loadByEmail(ctx, targetEmail)
	if err != nil {
		return err
	}
	requester, err := s.loadByEmail(ctx, requesterEmail)
	if err != nil {
		return err
	}
	if err := requester.CheckScope(target); err != nil {
		return err
	}
	if err := requester.CheckCanManage(target); err != nil {
		return err
	}

	if enable {
		target.Activate()
	} else {
		target.Deactivate()
	}
	saved, err := s.Users.Save(ctx, target)
	if err != nil {
		return err
	}

	if err := s.pushAccountState(ctx, saved.Email.String(), enable); err != nil {
		s.drift(op, saved, err)
		s.enqueueRetry(ctx, saved, enable)
		return err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"op":           op,
			"user_id":      saved.ID,
			"tenant_id":    saved.TenantID,
			"requested_by": requester.ID,
		}).Info("account state changed")
	}
	s.index(ctx, saved)
	s.publish(ctx, accountStateEvent(saved, requester, enable))
	return nil
}

func (s *Service) pushAccountState(ctx context.Context, email string, enable bool) error {
	if enable {
		return s.IDP.EnableIdentity(ctx, email)
	}
	return s.IDP.DisableIdentity(ctx, email)
}

func (s *Service) enqueueRetry(ctx context.Context, u *entity.User, enable bool) {
	if s.SyncQueue == nil {
		return
	}
	if err := s.SyncQueue.EnqueueAccountState(ctx, u.Email.String(), enable); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("failed to enqueue provider sync")
	}
}

func accountStateEvent(target, requester *entity.User, enable bool) event.DomainEvent {
	if enable {
		return event.NewAccountActivated(event.AccountActivatedEvent{
			UserID:           target.ID,
			TenantID:         target.TenantID,
			Email:            target.Email.String(),
			FirstName:        target.FirstName,
			ActivatedByEmail: requester.Email.String(),
		})
	}
	return event.NewAccountBanned(event.AccountBannedEvent{
		UserID:        target.ID,
		TenantID:      target.TenantID,
		Email:         target.Email.String(),
		FirstName:     target.FirstName,
		BannedByEmail: requester.Email.String(),
	})
}

// SyncAccountState pushes the current local active flag for email to the
// provider. It backs the provider sync worker; the local store wins, so a
// state changed again since the task was queued is pushed as it is now.
func (s *Service) SyncAccountState(ctx context.Context, email string) error {
	user, err := s.loadByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.pushAccountState(ctx, user.Email.String(), user.Active); err != nil {
		s.Metrics.ProviderDrift("sync_account_state")
		return err
	}
	return nil
}
