package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/repository"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const userColumns = `id, tenant_id, unit_id, first_name, last_name, email, role,
	email_verified, active, must_change_password, avatar_url, version, created_at, updated_at`

const userOrder = ` ORDER BY last_name, first_name, email`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Save inserts users with Version 0 and updates the rest guarded by their
// version. A stale version fails with Conflict.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	db := conn(ctx, r.pool)
	now := time.Now().UTC()

	if u.Version == 0 {
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		_, err := db.Exec(ctx, `
			INSERT INTO users (id, tenant_id, unit_id, first_name, last_name, email, role,
				email_verified, active, must_change_password, avatar_url, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12, $13)
		`, u.ID, u.TenantID, u.UnitID, u.FirstName, u.LastName, u.Email.String(), u.Role.String(),
			u.EmailVerified, u.Active, u.MustChangePassword, u.AvatarURL, u.CreatedAt, now)
		if err != nil {
			return nil, mapError(err, "user with email "+u.Email.String())
		}
		u.Version = 1
		u.UpdatedAt = now
		return copyUser(u), nil
	}

	tag, err := db.Exec(ctx, `
		UPDATE users
		SET unit_id = $1, first_name = $2, last_name = $3, email = $4, role = $5,
			email_verified = $6, active = $7, must_change_password = $8, avatar_url = $9,
			version = version + 1, updated_at = $10
		WHERE id = $11 AND version = $12
	`, u.UnitID, u.FirstName, u.LastName, u.Email.String(), u.Role.String(),
		u.EmailVerified, u.Active, u.MustChangePassword, u.AvatarURL, now, u.ID, u.Version)
	if err != nil {
		return nil, mapError(err, "user with email "+u.Email.String())
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, u.ID).Scan(&exists); err != nil {
			return nil, mapError(err, "user "+u.ID)
		}
		if !exists {
			return nil, apperr.NotFound("user " + u.ID + " not found")
		}
		return nil, apperr.Conflict("user " + u.ID + " was modified concurrently")
	}
	u.Version++
	u.UpdatedAt = now
	return copyUser(u), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user "+id)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user "+email)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, mapError(err, "user "+email)
	}
	return exists, nil
}

func (r *UserRepository) FindAllByTenantID(ctx context.Context, tenantID string) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE tenant_id = $1`+userOrder, tenantID)
}

func (r *UserRepository) FindAllByUnitID(ctx context.Context, unitID string) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE unit_id = $1`+userOrder, unitID)
}

func (r *UserRepository) FindAllByUnitIDAndTenantID(ctx context.Context, unitID, tenantID string) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE unit_id = $1 AND tenant_id = $2`+userOrder, unitID, tenantID)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]*entity.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "users")
	}
	defer rows.Close()

	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "users")
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "users")
	}
	return out, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u     entity.User
		email string
		role  string
	)
	if err := row.Scan(&u.ID, &u.TenantID, &u.UnitID, &u.FirstName, &u.LastName, &email, &role,
		&u.EmailVerified, &u.Active, &u.MustChangePassword, &u.AvatarURL, &u.Version,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := entity.NewEmail(email)
	if err != nil {
		return nil, err
	}
	u.Email = parsed
	u.Role = entity.UserRole(role)
	return &u, nil
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	if u.UnitID != nil {
		unit := *u.UnitID
		c.UnitID = &unit
	}
	return &c
}

var _ repository.UserRepository = (*UserRepository)(nil)
