// Package event holds the immutable facts emitted by the identity
// orchestrations. Each event carries its full payload so consumers never need
// to call back into this service.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys, one per event kind.
const (
	OrganizationRegistered = "identity.organization.registered"
	UserProvisioned        = "identity.user.provisioned"
	AccountBanned          = "identity.account.banned"
	AccountActivated       = "identity.account.activated"
	PasswordResetRequested = "identity.password.reset_requested"
)

// DomainEvent is implemented by every published event.
type DomainEvent interface {
	RoutingKey() string
	ID() string
}

// Meta is embedded in every event.
type Meta struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newMeta() Meta {
	return Meta{EventID: uuid.NewString(), OccurredAt: time.Now().UTC()}
}

func (m Meta) ID() string { return m.EventID }

type OrganizationRegisteredEvent struct {
	Meta
	TenantID         string `json:"tenant_id"`
	OwnerID          string `json:"owner_id"`
	OwnerEmail       string `json:"owner_email"`
	OwnerFirstName   string `json:"owner_first_name"`
	OwnerLastName    string `json:"owner_last_name"`
	OrganizationName string `json:"organization_name"`
}

func NewOrganizationRegistered(tenantID, ownerID, ownerEmail, firstName, lastName, organizationName string) OrganizationRegisteredEvent {
	return OrganizationRegisteredEvent{
		Meta:             newMeta(),
		TenantID:         tenantID,
		OwnerID:          ownerID,
		OwnerEmail:       ownerEmail,
		OwnerFirstName:   firstName,
		OwnerLastName:    lastName,
		OrganizationName: organizationName,
	}
}

func (OrganizationRegisteredEvent) RoutingKey() string { return OrganizationRegistered }

type UserProvisionedEvent struct {
	Meta
	UserID         string  `json:"user_id"`
	TenantID       string  `json:"tenant_id"`
	UnitID         *string `json:"unit_id,omitempty"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Role           string  `json:"role"`
	CreatedByEmail string  `json:"created_by_email"`
	// TemporaryPassword lets the notification service deliver credentials.
	TemporaryPassword string `json:"temporary_password"`
}

func (UserProvisionedEvent) RoutingKey() string { return UserProvisioned }

type AccountBannedEvent struct {
	Meta
	UserID        string `json:"user_id"`
	TenantID      string `json:"tenant_id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	BannedByEmail string `json:"banned_by_email"`
}

func (AccountBannedEvent) RoutingKey() string { return AccountBanned }

type AccountActivatedEvent struct {
	Meta
	UserID           string `json:"user_id"`
	TenantID         string `json:"tenant_id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	ActivatedByEmail string `json:"activated_by_email"`
}

func (AccountActivatedEvent) RoutingKey() string { return AccountActivated }

type PasswordResetRequestedEvent struct {
	Meta
	UserID    string `json:"user_id"`
	TenantID  string `json:"tenant_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

func (PasswordResetRequestedEvent) RoutingKey() string { return PasswordResetRequested }

// NewUserProvisioned, NewAccountBanned, NewAccountActivated and
// NewPasswordResetRequested stamp a fresh Meta on the payload.

func NewUserProvisioned(e UserProvisionedEvent) UserProvisionedEvent {
	e.Meta = newMeta()
	return e
}

func NewAccountBanned(e AccountBannedEvent) AccountBannedEvent {
	e.Meta = newMeta()
	return e
}

func NewAccountActivated(e AccountActivatedEvent) AccountActivatedEvent {
	e.Meta = newMeta()
	return e
}

func NewPasswordResetRequested(e PasswordResetRequestedEvent) PasswordResetRequestedEvent {
	e.Meta = newMeta()
	return e
}
