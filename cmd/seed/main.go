package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/config"
	"github.com/oksasatya/tenant-identity/internal/application"
	"github.com/oksasatya/tenant-identity/internal/container"
	pginfra "github.com/oksasatya/tenant-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
	"github.com/oksasatya/tenant-identity/pkg/helpers"
)

// seed onboards a demo organization through the real orchestrations, so the
// owner exists both locally and at the identity provider, then adds one unit
// and a manager inside it.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	email := flag.String("email", "contact@skilyo.com", "owner email")
	password := flag.String("password", "StrongPwd123!", "owner password")
	org := flag.String("org", "Skilyo Org", "organization name")
	flag.Parse()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)
	if cfg.StoreDriver == config.StorePostgres {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()
		container.SetPGPool(pool)
	}

	svc, err := container.IdentityService()
	if err != nil {
		logger.WithError(err).Fatal("failed to build identity service")
	}

	res, err := svc.Onboarding(ctx, application.OnboardingRequest{
		FirstName:        "Ivan",
		LastName:         "Dalton",
		Email:            *email,
		Password:         *password,
		OrganizationName: *org,
	})
	switch {
	case apperr.Is(err, apperr.KindAlreadyExists):
		logger.WithField("email", *email).Info("owner already seeded")
		return
	case err != nil:
		logger.WithError(err).Fatal("onboarding failed")
	}
	logger.WithFields(logrus.Fields{"tenant_id": res.TenantID, "owner": res.Owner.Email}).Info("organization seeded")

	if os.Getenv("SEED_SKIP_UNIT") != "" {
		return
	}
	unit, err := svc.CreateUnit(ctx, *email, "Headquarters")
	if err != nil {
		logger.WithError(err).Warn("unit not created")
		return
	}
	mgr, err := svc.ProvisionUser(ctx, *email, application.ProvisionUserRequest{
		FirstName: "Maria",
		LastName:  "Lopez",
		Email:     "manager@skilyo.com",
		Role:      "UNIT_MANAGER",
		UnitID:    &unit.ID,
	})
	if err != nil {
		logger.WithError(err).Warn("manager not provisioned")
		return
	}
	logger.WithFields(logrus.Fields{"unit": unit.Name, "manager": mgr.Email}).Info("unit and manager seeded")
}
