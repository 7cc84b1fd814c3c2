package port

import (
	"context"
	"io"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
)

// EventPublisher sends a domain event to the bus under its routing key.
type EventPublisher interface {
	Publish(ctx context.Context, e event.DomainEvent) error
}

// DirectoryQuery is a full-text query with mandatory scope filters.
type DirectoryQuery struct {
	Text     string
	TenantID string
	// UnitID restricts hits to one unit when set.
	UnitID *string
	// UserID restricts hits to one user when set (self-only scope).
	UserID *string
	Size   int
}

// DirectoryIndex is a search projection of users. It is never the source of truth.
type DirectoryIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q DirectoryQuery) ([]string, error)
}

// AvatarStore uploads profile images and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error)
}

// ProviderSyncQueue schedules a retry that pushes the local account state to
// the identity provider.
type ProviderSyncQueue interface {
	EnqueueAccountState(ctx context.Context, email string, enabled bool) error
}
