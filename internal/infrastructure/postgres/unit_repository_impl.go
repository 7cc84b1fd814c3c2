package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/repository"
)

type UnitRepository struct {
	pool *pgxpool.Pool
}

func NewUnitRepository(pool *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{pool: pool}
}

func (r *UnitRepository) Save(ctx context.Context, u *entity.Unit) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO units (id, tenant_id, name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, u.ID, u.TenantID, u.Name, u.CreatedAt)
	return mapError(err, "unit "+u.Name)
}

func (r *UnitRepository) FindByID(ctx context.Context, id string) (*entity.Unit, error) {
	u := &entity.Unit{}
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, tenant_id, name, created_at FROM units WHERE id = $1
	`, id).Scan(&u.ID, &u.TenantID, &u.Name, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err, "unit "+id)
	}
	return u, nil
}

func (r *UnitRepository) FindAllByTenantID(ctx context.Context, tenantID string) ([]*entity.Unit, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, tenant_id, name, created_at FROM units WHERE tenant_id = $1 ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, mapError(err, "units")
	}
	defer rows.Close()

	out := make([]*entity.Unit, 0)
	for rows.Next() {
		u := &entity.Unit{}
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Name, &u.CreatedAt); err != nil {
			return nil, mapError(err, "units")
		}
		out = append(out, u)
	}
	return out, mapError(rows.Err(), "units")
}

var (
	_ repository.UnitRepository = (*UnitRepository)(nil)
	_ repository.TxManager      = (*TxManager)(nil)
)
