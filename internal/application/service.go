package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/internal/domain/port"
	repo "github.com/oksasatya/tenant-identity/internal/domain/repository"
	domainsvc "github.com/oksasatya/tenant-identity/internal/domain/service"
	"github.com/oksasatya/tenant-identity/internal/observability"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// Service hosts the identity use cases. Each exported method is one
// orchestration; the order of steps inside it is part of its contract.
type Service struct {
	Users      repo.UserRepository
	Units      repo.UnitRepository
	Tx         repo.TxManager
	IDP        port.IdentityProviderGateway
	Events     port.EventPublisher
	Policy     *domainsvc.OnboardingPolicy
	Logger     *logrus.Logger

	// Optional collaborators.
	Index     port.DirectoryIndex
	Avatars   port.AvatarStore
	SyncQueue port.ProviderSyncQueue
	Metrics   *observability.Metrics

	// TempPasswordLength is the length of generated provisioning passwords.
	TempPasswordLength int
}

type Option func(*Service)

func WithDirectoryIndex(idx port.DirectoryIndex) Option { return func(s *Service) { s.Index = idx } }
func WithAvatarStore(st port.AvatarStore) Option       { return func(s *Service) { s.Avatars = st } }
func WithSyncQueue(q port.ProviderSyncQueue) Option    { return func(s *Service) { s.SyncQueue = q } }
func WithMetrics(m *observability.Metrics) Option      { return func(s *Service) { s.Metrics = m } }

func NewService(users repo.UserRepository, units repo.UnitRepository, tx repo.TxManager, idp port.IdentityProviderGateway, events port.EventPublisher, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		Users:              users,
		Units:              units,
		Tx:                 tx,
		IDP:                idp,
		Events:             events,
		Policy:             domainsvc.NewOnboardingPolicy(users),
		Logger:             logger,
		TempPasswordLength: 16,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadByEmail validates raw and loads the matching user.
func (s *Service) loadByEmail(ctx context.Context, raw string) (*entity.User, error) {
	email, err := entity.NewEmail(raw)
	if err != nil {
		return nil, err
	}
	return s.Users.FindByEmail(ctx, email.String())
}

// publish is fire-and-forget: a failure is logged and counted, never returned.
func (s *Service) publish(ctx context.Context, e event.DomainEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, e); err != nil {
		s.Metrics.EventPublishFailed(e.RoutingKey())
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"event":    e.RoutingKey(),
				"event_id": e.ID(),
			}).Warn("event publish failed")
		}
	}
}

// index refreshes the search projection; failures are logged only.
func (s *Service) index(ctx context.Context, u *entity.User) {
	if s.Index == nil || u == nil {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("directory index failed")
	}
}

// providerError keeps gateway kinds and classifies anything else as an
// identity provider failure.
func providerError(err error, msg string) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Wrap(apperr.KindIdentityProvider, msg, err)
}

func (s *Service) record(op string, err error) {
	s.Metrics.Operation(op, err)
}

// drift logs a state where the local store and the provider disagree.
func (s *Service) drift(op string, u *entity.User, err error) {
	s.Metrics.ProviderDrift(op)
	if s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"op":        op,
			"user_id":   u.ID,
			"email":     u.Email.String(),
			"tenant_id": u.TenantID,
		}).Error("local store and identity provider diverged")
	}
}
