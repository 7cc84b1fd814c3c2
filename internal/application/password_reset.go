package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const (
	opPasswordReset = "password_reset"
	opLogout        = "logout"
)

// RequestPasswordReset asks the provider to email a reset link. An unknown or
// inactive email is a silent no-op, indistinguishable from success. A provider
// failure for an active account is returned so the caller can retry.
func (s *Service) RequestPasswordReset(ctx context.Context, rawEmail string) (err error) {
	defer func() { s.record(opPasswordReset, err) }()

	email, err := entity.NewEmail(rawEmail)
	if err != nil {
		return err
	}
	user, err := s.Users.FindByEmail(ctx, email.String())
	if apperr.Is(err, apperr.KindNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !user.Active {
		return nil
	}
	if err := s.IDP.SendPasswordReset(ctx, user.Email.String()); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"op":      opPasswordReset,
				"user_id": user.ID,
			}).Warn("provider failed to send password reset")
		}
		return providerError(err, "send password reset")
	}
	s.publish(ctx, event.NewPasswordResetRequested(event.PasswordResetRequestedEvent{
		UserID:    user.ID,
		TenantID:  user.TenantID,
		Email:     user.Email.String(),
		FirstName: user.FirstName,
	}))
	return nil
}

// Logout revokes the provider session. Provider errors are logged and
// swallowed; the caller clears its cookies either way.
func (s *Service) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { s.record(opLogout, err) }()

	if strings.TrimSpace(refreshToken) == "" {
		return apperr.Validation("refresh token is required")
	}
	if err := s.IDP.Logout(ctx, refreshToken); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("op", opLogout).Warn("provider logout failed")
	}
	return nil
}
