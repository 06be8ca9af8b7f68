package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cafeconecta/cafeconecta-backend/internal/cron"
	marketsvc "github.com/cafeconecta/cafeconecta-backend/internal/market"
	"github.com/cafeconecta/cafeconecta-backend/pkg/config"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/marketdata"
	"github.com/cafeconecta/cafeconecta-backend/pkg/metrics"
	"github.com/cafeconecta/cafeconecta-backend/pkg/migrate"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox"
	"github.com/cafeconecta/cafeconecta-backend/pkg/redis"
)

const lockKeyFormat = "cafe:worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()
	outboxRepo := outbox.NewRepository(conn)
	outboxService := outbox.NewService(outboxRepo, logg)

	marketParams := marketsvc.ServiceParams{
		DB:           dbClient,
		Repo:         marketsvc.NewRepository(conn),
		Outbox:       outboxService,
		Cache:        redisClient,
		MarketConfig: cfg.Market,
		Logger:       logg,
	}
	if cfg.Market.TwelveDataAPIKey != "" {
		feed, err := marketdata.NewClient(cfg.Market.TwelveDataAPIKey,
			marketdata.WithBaseURL(cfg.Market.TwelveDataBaseURL),
			marketdata.WithHTTPClient(&http.Client{Timeout: cfg.Market.FeedTimeout}),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create market feed client", err)
			os.Exit(1)
		}
		marketParams.Feed = feed
	} else {
		logg.Warn(context.Background(), "market feed api key missing, indicator refresh job will fail until configured")
	}

	marketService, err := marketsvc.NewService(marketParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create market service", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	indicatorJob, err := cron.NewIndicatorRefreshJob(cron.IndicatorRefreshJobParams{
		Logger: logg,
		Market: marketService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create indicator refresh job", err)
		os.Exit(1)
	}

	alertJob, err := cron.NewAlertSweepJob(cron.AlertSweepJobParams{
		Logger: logg,
		Market: marketService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create alert sweep job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(indicatorJob, alertJob, retentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
