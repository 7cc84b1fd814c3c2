package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oksasatya/tenant-identity/config"
	"github.com/oksasatya/tenant-identity/internal/container"
	pginfra "github.com/oksasatya/tenant-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/syncqueue"
	"github.com/oksasatya/tenant-identity/internal/observability"
	"github.com/oksasatya/tenant-identity/pkg/helpers"
)

// sync_worker replays account-state pushes to the identity provider that
// failed during ban/activate.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-sync", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.StoreDriver != config.StorePostgres {
		logger.Fatal("sync worker needs the postgres store; the memory store is private to the API process")
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetMetrics(metrics)

	svc, err := container.IdentityService()
	if err != nil {
		logger.WithError(err).Fatal("failed to build identity service")
	}

	worker, err := syncqueue.NewWorker(syncqueue.Config{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		Queue:         cfg.SyncQueueName,
		MaxRetry:      cfg.SyncQueueMaxRetry,
		Concurrency:   cfg.SyncQueueConcurrency,
	}, svc, logger, metrics)
	if err != nil {
		logger.WithError(err).Fatal("failed to build sync worker")
	}

	logger.WithField("queue", cfg.SyncQueueName).Info("provider sync worker started")
	if err := worker.Run(ctx); err != nil {
		logger.WithError(err).Fatal("sync worker stopped")
	}
	logger.Info("provider sync worker exited")
}
