package application

import (
	"context"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const opCreateUnit = "create_unit"

// CreateUnit adds a unit to the requester's tenant. Owner only.
func (s *Service) CreateUnit(ctx context.Context, requesterEmail, name string) (view UnitView, err error) {
	defer func() { s.record(opCreateUnit, err) }()

	requester, err := s.loadByEmail(ctx, requesterEmail)
	if err != nil {
		return UnitView{}, err
	}
	if requester.Role != entity.RoleCenterOwner {
		return UnitView{}, apperr.InsufficientPrivileges("only the tenant owner may create units")
	}
	unit, err := entity.NewUnit(requester.TenantID, name)
	if err != nil {
		return UnitView{}, err
	}
	if err := s.Units.Save(ctx, unit); err != nil {
		return UnitView{}, err
	}
	return toUnitView(unit), nil
}

// ListUnits returns every unit of the tenant to the owner, and the requester's
// own unit (if any) to everyone else.
func (s *Service) ListUnits(ctx context.Context, requesterEmail string) ([]UnitView, error) {
	requester, err := s.loadByEmail(ctx, requesterEmail)
	if err != nil {
		return nil, err
	}
	var units []*entity.Unit
	switch {
	case requester.Role == entity.RoleCenterOwner:
		units, err = s.Units.FindAllByTenantID(ctx, requester.TenantID)
		if err != nil {
			return nil, err
		}
	case requester.UnitID != nil:
		unit, err := s.Units.FindByID(ctx, *requester.UnitID)
		if err != nil {
			return nil, err
		}
		units = []*entity.Unit{unit}
	}
	out := make([]UnitView, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitView(u))
	}
	return out, nil
}
