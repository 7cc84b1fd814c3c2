package router

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oksasatya/tenant-identity/internal/application"
	"github.com/oksasatya/tenant-identity/internal/container"
	handlers "github.com/oksasatya/tenant-identity/internal/interface/http"
	"github.com/oksasatya/tenant-identity/internal/router/modules"
)

type identityDeps struct {
	Service *application.Service
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Units   *handlers.UnitHandler
}

func buildIdentityDeps() (identityDeps, error) {
	svc, err := container.IdentityService()
	if err != nil {
		return identityDeps{}, err
	}
	cfg := container.GetConfig()
	logger := container.GetLogger()
	return identityDeps{
		Service: svc,
		Auth:    handlers.NewAuthHandler(svc, logger, cfg.CookieDomain, cfg.CookieSecure),
		Users:   handlers.NewUserHandler(svc, logger),
		Units:   handlers.NewUnitHandler(svc, logger),
	}, nil
}

// InitModules wires every feature module into the registry. It is called once
// at startup, after the container singletons are set.
func InitModules(r *Registry) error {
	deps, err := buildIdentityDeps()
	if err != nil {
		return err
	}
	verifier := container.GetVerifier()
	if verifier == nil {
		return fmt.Errorf("token verifier not configured")
	}
	rdb := container.GetRedis()
	logger := container.GetLogger()

	r.Add(modules.NewAuthModule(deps.Auth, rdb, logger))
	r.Add(modules.NewUserModule(deps.Users, verifier, rdb, logger))
	r.Add(modules.NewUnitModule(deps.Units, verifier, rdb, logger))
	if container.GetConfig().MetricsEnabled {
		r.AddRoot(modules.NewDebugModule(prometheus.DefaultGatherer))
	}
	return nil
}
