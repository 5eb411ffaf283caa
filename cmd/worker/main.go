package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/events"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/telemetry"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log, events.Options{ConsumerGroup: cfg.ServiceName + "-cache-sync"})
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	var redisClient *cache.RedisClient
	if cfg.CacheBackend != config.CacheBackendMemcache {
		redisClient, err = cache.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
	}

	itemCache, err := cache.NewItemCache(cfg, redisClient)
	if err != nil {
		log.Error("failed to setup item cache", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	a := &app.Application{
		Config:    cfg,
		Db:        pool,
		Logger:    log,
		EventBus:  eventBus,
		Redis:     redisClient,
		ItemCache: itemCache,
	}
	svcs := appsvcs.New(a)

	if err := registerSubscribers(ctx, eventBus, svcs.Item, log); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	<-ctx.Done()
	log.Info("shutting down worker...")
	// EventBus.Close (deferred) waits up to 30s for in-flight handlers.
}
