package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// Unit is an optional sub-organization inside a tenant, e.g. a branch office.
type Unit struct {
	ID        string
	TenantID  string
	Name      string
	CreatedAt time.Time
}

func NewUnit(tenantID, name string) (*Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("unit name is required")
	}
	if tenantID == "" {
		return nil, apperr.Validation("tenant id is required")
	}
	return &Unit{ID: uuid.NewString(), TenantID: tenantID, Name: name, CreatedAt: time.Now().UTC()}, nil
}
