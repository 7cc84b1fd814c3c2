package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/tenant-identity/config"
	"github.com/oksasatya/tenant-identity/internal/container"
	pginfra "github.com/oksasatya/tenant-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/syncqueue"
	"github.com/oksasatya/tenant-identity/internal/interface/middleware"
	"github.com/oksasatya/tenant-identity/internal/observability"
	"github.com/oksasatya/tenant-identity/internal/router"
	"github.com/oksasatya/tenant-identity/pkg/helpers"
	"github.com/oksasatya/tenant-identity/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMetrics(observability.NewMetrics(prometheus.DefaultRegisterer))

	if cfg.StoreDriver == config.StorePostgres {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		container.SetPGPool(pool)
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
	}

	verifier, err := helpers.NewTokenVerifier(cfg.KeycloakRealmPublicKey, cfg.KeycloakIssuer())
	if err != nil {
		logger.WithError(err).Fatal("token verifier")
	}
	container.SetVerifier(verifier)

	// Redis backs rate limits and the provider sync queue; both degrade when absent.
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb, 3*time.Second); err != nil {
		logger.WithError(err).Warn("redis unavailable; rate limiting and provider sync retries disabled")
	} else {
		container.SetRedis(rdb)
		sc, err := syncqueue.NewClientFromRedis(rdb, cfg.SyncQueueName, cfg.SyncQueueMaxRetry)
		if err != nil {
			logger.WithError(err).Warn("provider sync queue disabled")
		} else {
			defer func() { _ = sc.Close() }()
			sc.Logger = logger
			container.SetSyncClient(sc)
		}
	}

	if pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange); err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable; domain events are only logged")
	} else {
		defer pub.Close()
		container.SetRabbitPub(pub)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(helpers.ESOptions{
			Addrs:    addrs,
			Username: cfg.ElasticsearchUser,
			Password: cfg.ElasticsearchPass,
		})
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = helpers.PingES(pingCtx, es)
			cancel()
		}
		if err != nil {
			logger.WithError(err).Warn("elasticsearch disabled; search falls back to the directory")
		} else {
			container.SetES(es)
		}
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs disabled; avatar upload unavailable")
		} else {
			defer func() { _ = gcsClient.Close() }()
			container.SetGCS(gcsClient)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(), middleware.RealIP(), container.GetMetrics().GinMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	if err := router.InitModules(reg); err != nil {
		logger.WithError(err).Fatal("failed to wire modules")
	}
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
