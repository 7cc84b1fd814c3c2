package port

import (
	"context"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
)

// IdentityProviderGateway is the boundary to the external identity provider,
// which owns credentials, sessions and email verification. Every method is a
// synchronous remote call. Failures surface as apperr kinds IdentityProvider,
// AccountLocked or InvalidCredentials.
type IdentityProviderGateway interface {
	// CreateIdentity registers u with password. When u.MustChangePassword is set
	// the credential is temporary.
	CreateIdentity(ctx context.Context, u *entity.User, password string) error
	Authenticate(ctx context.Context, email, password string) (entity.AuthToken, error)
	GetStatus(ctx context.Context, email string) (entity.ProviderStatus, error)
	DisableIdentity(ctx context.Context, email string) error
	EnableIdentity(ctx context.Context, email string) error
	SendPasswordReset(ctx context.Context, email string) error
	UpdateUserRole(ctx context.Context, email, roleName string) error
	Logout(ctx context.Context, refreshToken string) error
}
