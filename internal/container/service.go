package container

import (
	"fmt"
	"sync"

	"github.com/oksasatya/tenant-identity/config"
	"github.com/oksasatya/tenant-identity/internal/application"
	"github.com/oksasatya/tenant-identity/internal/domain/port"
	repo "github.com/oksasatya/tenant-identity/internal/domain/repository"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/keycloak"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/memory"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/tenant-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/search"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/storage"
)

var (
	svcOnce sync.Once
	svc     *application.Service
	svcErr  error
)

// IdentityService builds the orchestrator service once from the registered
// singletons. Optional collaborators are attached only when configured.
func IdentityService() (*application.Service, error) {
	svcOnce.Do(func() { svc, svcErr = buildService() })
	return svc, svcErr
}

type stores struct {
	users repo.UserRepository
	units repo.UnitRepository
	tx    repo.TxManager
}

func buildStores(c *config.Config) (stores, error) {
	switch c.StoreDriver {
	case config.StoreMemory:
		s := memory.NewStore()
		return stores{memory.NewUserRepository(s), memory.NewUnitRepository(s), memory.NewTxManager(s)}, nil
	case config.StorePostgres:
		if pgPool == nil {
			return stores{}, fmt.Errorf("postgres store selected but no pool registered")
		}
		return stores{pginfra.NewUserRepository(pgPool), pginfra.NewUnitRepository(pgPool), pginfra.NewTxManager(pgPool)}, nil
	default:
		return stores{}, fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
}

func buildService() (*application.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not registered")
	}
	st, err := buildStores(cfg)
	if err != nil {
		return nil, err
	}

	idp := keycloak.NewGateway(keycloak.Config{
		BaseURL:           cfg.KeycloakURL,
		Realm:             cfg.KeycloakRealm,
		ClientID:          cfg.KeycloakClientID,
		ClientSecret:      cfg.KeycloakClientSecret,
		AdminUser:         cfg.KeycloakAdminUser,
		AdminPassword:     cfg.KeycloakAdminPassword,
		ResetLinkLifespan: cfg.KeycloakResetLinkLifespan,
		Timeout:           cfg.KeycloakTimeout,
	}, logger)

	var events port.EventPublisher = messaging.LogPublisher{Logger: logger}
	if rabbitPub != nil {
		events = messaging.NewEventPublisher(rabbitPub, cfg.EventPublishTimeout)
	}

	opts := []application.Option{application.WithMetrics(metrics)}
	if esClient != nil {
		opts = append(opts, application.WithDirectoryIndex(search.NewDirectoryIndex(esClient, cfg.ESUsersIndex)))
	}
	if gcsClient != nil && cfg.GCSBucket != "" {
		opts = append(opts, application.WithAvatarStore(storage.NewAvatarStore(gcsClient, cfg.GCSBucket)))
	}
	if syncClient != nil {
		opts = append(opts, application.WithSyncQueue(syncClient))
	}

	s := application.NewService(st.users, st.units, st.tx, idp, events, logger, opts...)
	if cfg.TempPasswordLength > 0 {
		s.TempPasswordLength = cfg.TempPasswordLength
	}
	return s, nil
}
