package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const opLogin = "login"

// Login authenticates at the provider, loads the local user, then mirrors the
// provider's verification and password-change flags into it. An unknown email
// fails at the provider exactly like a wrong password. A failed local save does
// not revoke the issued token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (resp LoginResponse, err error) {
	defer func() { s.record(opLogin, err) }()

	if strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, apperr.Validation("password is required")
	}
	email, err := entity.NewEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}

	token, err := s.IDP.Authenticate(ctx, email.String(), req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	user, err := s.Users.FindByEmail(ctx, email.String())
	if err != nil {
		return LoginResponse{}, err
	}
	status, err := s.IDP.GetStatus(ctx, user.Email.String())
	if err != nil {
		return LoginResponse{}, err
	}

	user.SyncValidationStatus(status.EmailVerified)
	user.UpdatePasswordRequirement(status.MustChangePassword)
	if saved, saveErr := s.Users.Save(ctx, user); saveErr != nil {
		if s.Logger != nil {
			s.Logger.WithError(saveErr).WithFields(logrus.Fields{
				"op":      opLogin,
				"user_id": user.ID,
			}).Warn("failed to persist provider status after login")
		}
	} else {
		user = saved
		s.index(ctx, user)
	}

	return LoginResponse{
		Token:              token,
		Role:               user.Role.String(),
		MustChangePassword: user.MustChangePassword,
		User:               ToProfile(user),
	}, nil
}
