package repository

import (
	"context"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
)

// UserRepository defines the persistence port for users.
// Lookups return an apperr NotFound error when nothing matches. Save inserts
// when Version is 0 and otherwise updates, failing with Conflict on a stale
// version and AlreadyExists on a duplicate email.
type UserRepository interface {
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAllByTenantID(ctx context.Context, tenantID string) ([]*entity.User, error)
	FindAllByUnitID(ctx context.Context, unitID string) ([]*entity.User, error)
	FindAllByUnitIDAndTenantID(ctx context.Context, unitID, tenantID string) ([]*entity.User, error)
}

// UnitRepository persists the sub-organizations of a tenant.
type UnitRepository interface {
	Save(ctx context.Context, u *entity.Unit) error
	FindByID(ctx context.Context, id string) (*entity.Unit, error)
	FindAllByTenantID(ctx context.Context, tenantID string) ([]*entity.Unit, error)
}

// TxManager runs fn inside one local transaction. Repositories called with the
// ctx passed to fn join that transaction; a non-nil error rolls it back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
